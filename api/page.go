package api

import (
	"net/http"
	"os"
)

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(pageHTML))
}

// handleStylesheet serves the configured stylesheet, or the built-in one when
// it is unset or unreadable.
func (s *Server) handleStylesheet(w http.ResponseWriter, r *http.Request) {
	css := []byte(defaultStylesheet)
	if s.Stylesheet != "" {
		data, err := os.ReadFile(s.Stylesheet)
		if err != nil {
			s.Log.Debug("stylesheet unavailable, using default", "path", s.Stylesheet, "error", err)
		} else {
			css = data
		}
	}

	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(css)
}

const defaultStylesheet = `* { margin: 0; padding: 0; box-sizing: border-box; }
body {
  font-family: "Segoe UI", Arial, sans-serif;
  background: #f5f5f5;
  display: flex;
  justify-content: center;
  padding: 24px 0;
}
.card {
  background: #fff;
  border-radius: 8px;
  width: 500px;
  padding: 0 30px 30px;
}
h1 { font-size: 24px; color: #000; padding: 16px 0; }
.input {
  border: 2px solid #e0e0e0;
  border-radius: 8px;
  padding: 15px;
  margin-bottom: 15px;
}
.input:focus-within { border-color: #4a90e2; }
.input label { display: block; font-weight: bold; font-size: 14px; color: #333; margin-bottom: 8px; }
.input textarea { width: 100%; height: 100px; border: none; outline: none; resize: none; font-size: 13px; color: #333; }
.preview {
  border: 2px solid #e0e0e0;
  border-radius: 8px;
  padding: 40px 20px;
  margin: 15px 0;
  text-align: center;
}
.preview h2 { font-size: 14px; color: #333; margin-bottom: 10px; }
#qr {
  width: 300px; height: 300px;
  margin: 0 auto;
  border: 1px solid #e0e0e0;
  border-radius: 4px;
  display: flex; align-items: center; justify-content: center;
}
.actions { display: flex; flex-direction: column; align-items: center; gap: 10px; }
button, a.button {
  width: 180px; height: 40px;
  border: none; border-radius: 8px;
  color: #fff; font-size: 14px; font-weight: bold;
  cursor: pointer; text-align: center; line-height: 40px; text-decoration: none;
}
button:disabled { background: #ccc; color: #666; cursor: default; }
#generate { background: linear-gradient(#4a90e2, #357abd); }
#save { background: linear-gradient(#28a745, #218838); }
#download { background: linear-gradient(#6c757d, #5a6268); }
#path { width: 300px; padding: 6px; border: 1px solid #e0e0e0; border-radius: 4px; }
#status {
  margin-top: 15px;
  padding: 10px;
  border-radius: 6px;
  font-size: 12px;
  text-align: center;
  color: #666; background: #f8f9fa; border: 1px solid #e9ecef;
}
#status.success { color: #155724; background: #d4edda; border-color: #c3e6cb; }
#status.error { color: #721c24; background: #f8d7da; border-color: #f5c6cb; }
`

const pageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>QR Code Generator</title>
<link rel="stylesheet" href="/styles.css">
</head>
<body>
<div class="card">
  <h1>QR Code Generator</h1>
  <div class="input">
    <label for="text">Enter your message or URL:</label>
    <textarea id="text" placeholder="Type your message here..."></textarea>
  </div>
  <div class="actions">
    <button id="generate">Generate QR Code</button>
  </div>
  <div class="preview">
    <h2>QR Code Preview</h2>
    <div id="qr"></div>
  </div>
  <div class="actions">
    <input id="path" type="text" placeholder="qr_code.png">
    <button id="save" disabled>Save QR Code</button>
    <a id="download" class="button" href="/download" hidden>Download</a>
  </div>
  <div id="status">Ready to generate QR code</div>
</div>
<script>
(function() {
  var text = document.getElementById('text');
  var qr = document.getElementById('qr');
  var save = document.getElementById('save');
  var download = document.getElementById('download');
  var path = document.getElementById('path');
  var statusEl = document.getElementById('status');

  function show(msg) {
    statusEl.textContent = msg.text;
    statusEl.className = msg.kind;
  }

  function clearChildren(el) {
    while (el.firstChild) el.removeChild(el.firstChild);
  }

  function setImage(ok) {
    clearChildren(qr);
    save.disabled = !ok;
    download.hidden = !ok;
    if (ok) {
      var img = document.createElement('img');
      img.setAttribute('alt', 'QR Code');
      img.setAttribute('src', '/preview.png?t=' + Date.now());
      qr.appendChild(img);
    }
  }

  function post(url, body) {
    return fetch(url, {
      method: 'POST',
      headers: { 'Content-Type': 'application/json' },
      body: JSON.stringify(body)
    }).then(function(r) { return r.json(); });
  }

  document.getElementById('generate').addEventListener('click', function() {
    post('/generate', { text: text.value })
      .then(function(data) {
        setImage(!!data.png);
        if (data.status) show(data.status);
      })
      .catch(function() { show({ kind: 'error', text: 'Connection error, please retry.' }); });
  });

  save.addEventListener('click', function() {
    post('/export', { path: path.value })
      .then(function(data) {
        if (data.status) show(data.status);
        else if (data.error) show({ kind: 'error', text: data.error });
      })
      .catch(function() { show({ kind: 'error', text: 'Connection error, please retry.' }); });
  });
})();
</script>
</body>
</html>`
