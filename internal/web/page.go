package web

import (
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
)

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; max-width: 880px; margin: 2rem auto; padding: 0 1rem; }
fieldset { margin-bottom: 1.5rem; }
textarea, input[type=text], input[type=url] { width: 100%; box-sizing: border-box; }
pre { white-space: pre-wrap; background: #f4f4f4; padding: 1rem; }
.error { color: #b00020; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>

<fieldset>
<legend>Ask about an image</legend>
<form id="ask">
<p><textarea name="question" rows="3" placeholder="What is happening in this image?"></textarea></p>
<p><input type="file" name="image" accept="image/*"></p>
<p><input type="url" name="image_url" placeholder="or an image URL"></p>
<p>
<label><input type="radio" name="mode" value="vision" checked> Vision</label>
<label><input type="radio" name="mode" value="text"> Text only</label>
</p>
<button type="submit">Ask</button>
<button type="button" id="analyze">Comprehensive analysis</button>
</form>
</fieldset>

<fieldset>
<legend>Compare models</legend>
<form id="compare">
<p><textarea name="query" rows="3" placeholder="Explain recursion in one paragraph."></textarea></p>
<button type="submit">Compare all</button>
</form>
</fieldset>

<pre id="output">Results appear here.</pre>

<script>
const out = document.getElementById("output");
function show(resp) {
  resp.json().then(function (body) {
    out.className = resp.ok ? "" : "error";
    out.textContent = JSON.stringify(body, null, 2);
  });
}
document.getElementById("ask").addEventListener("submit", function (e) {
  e.preventDefault();
  out.textContent = "Thinking...";
  fetch("/api/v1/ask", { method: "POST", body: new FormData(e.target) }).then(show);
});
document.getElementById("analyze").addEventListener("click", function () {
  out.textContent = "Analyzing...";
  fetch("/api/v1/analyze", { method: "POST", body: new FormData(document.getElementById("ask")) }).then(show);
});
document.getElementById("compare").addEventListener("submit", function (e) {
  e.preventDefault();
  out.textContent = "Comparing...";
  const query = new FormData(e.target).get("query");
  fetch("/api/v1/compare", {
    method: "POST",
    headers: { "Content-Type": "application/json" },
    body: JSON.stringify({ query: query })
  }).then(show);
});
</script>
</body>
</html>
`))

func (s *Server) handleIndex(c *gin.Context) {
	c.HTML(http.StatusOK, "index", gin.H{"Title": s.title})
}
