package server

import "net/http"

func (s *Server) handleViewer(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(viewerHTML))
}

// viewerHTML draws layout frames from the websocket on a canvas and forwards
// pointer, search and resize input back to the engine.
const viewerHTML = `<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>codegraph</title>
<style>
  html, body { margin: 0; height: 100%; font: 14px/1.4 -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif; color: #1f2328; }
  body { display: flex; flex-direction: column; }
  form { display: flex; gap: .5rem; padding: .5rem; border-bottom: 1px solid #d0d7de; }
  input[name=repo] { flex: 1; }
  #status { padding: .25rem .5rem; color: #656d76; }
  #stage { position: relative; flex: 1; }
  canvas { position: absolute; inset: 0; width: 100%; height: 100%; }
  .tip { position: absolute; pointer-events: none; background: #1f2328; color: #fff; padding: .2rem .4rem; border-radius: 4px; font-size: 12px; white-space: pre; }
</style>
</head>
<body>
<form id="analyze">
  <input name="repo" placeholder="https://github.com/owner/repo" required>
  <input name="search" placeholder="Search files">
  <button>Analyze</button>
</form>
<div id="status">Connecting...</div>
<div id="stage"><canvas id="canvas"></canvas></div>
<script>
const canvas = document.getElementById("canvas");
const stage = document.getElementById("stage");
const status = document.getElementById("status");
const ctx = canvas.getContext("2d");
const tips = new Map();
let frame = null;

const proto = location.protocol === "https:" ? "wss:" : "ws:";
const ws = new WebSocket(proto + "//" + location.host + "/api/layout/ws");
const send = (msg) => { if (ws.readyState === WebSocket.OPEN) ws.send(JSON.stringify(msg)); };

function resize() {
  const r = stage.getBoundingClientRect();
  canvas.width = r.width * devicePixelRatio;
  canvas.height = r.height * devicePixelRatio;
  ctx.setTransform(devicePixelRatio, 0, 0, devicePixelRatio, 0, 0);
  send({type: "resize", width: r.width, height: r.height});
  draw();
}

function alphaFor(emphasis) {
  return emphasis === "dimmed" ? 0.15 : 1;
}

function draw() {
  const r = stage.getBoundingClientRect();
  ctx.clearRect(0, 0, r.width, r.height);
  if (!frame) return;
  const pos = new Map(frame.nodes.map((n) => [n.id, n]));
  for (const e of frame.edges) {
    const a = pos.get(e.source), b = pos.get(e.target);
    if (!a || !b) continue;
    ctx.globalAlpha = alphaFor(e.emphasis);
    ctx.strokeStyle = e.emphasis === "emphasized" ? "#0969da" : "#8c959f";
    ctx.lineWidth = Math.min(1 + e.weight, 4);
    ctx.beginPath();
    ctx.moveTo(a.x, a.y);
    ctx.lineTo(b.x, b.y);
    ctx.stroke();
  }
  for (const n of frame.nodes) {
    ctx.globalAlpha = alphaFor(n.emphasis);
    ctx.fillStyle = n.color;
    ctx.beginPath();
    ctx.arc(n.x, n.y, n.radius, 0, 2 * Math.PI);
    ctx.fill();
    ctx.lineWidth = n.match || n.pinned ? 3 : 1;
    ctx.strokeStyle = n.id === frame.focus ? "#0969da" : "#ffffff";
    ctx.stroke();
    if (n.emphasis === "emphasized") {
      ctx.fillStyle = "#1f2328";
      ctx.fillText(n.name, n.x + n.radius + 3, n.y + 4);
    }
  }
  ctx.globalAlpha = 1;
}

function showTips(overlays) {
  const live = new Set();
  for (const o of overlays || []) {
    live.add(o.id);
    let el = tips.get(o.id);
    if (!el) {
      el = document.createElement("div");
      el.className = "tip";
      stage.append(el);
      tips.set(o.id, el);
    }
    el.textContent = o.text;
    el.style.left = o.x + 12 + "px";
    el.style.top = o.y + 12 + "px";
  }
  for (const [id, el] of tips) {
    if (!live.has(id)) { el.remove(); tips.delete(id); }
  }
}

ws.onopen = () => { status.textContent = "Connected"; resize(); };
ws.onclose = () => { status.textContent = "Disconnected"; };
ws.onmessage = (event) => {
  const msg = JSON.parse(event.data);
  switch (msg.type) {
    case "frame":
      frame = msg;
      showTips(msg.overlays);
      draw();
      break;
    case "analyzed":
      status.textContent = msg.repo_name;
      break;
    case "error":
      status.textContent = "Error: " + msg.message;
      break;
  }
};

function point(event, type) {
  const r = canvas.getBoundingClientRect();
  send({type: type, x: event.clientX - r.left, y: event.clientY - r.top});
}
canvas.addEventListener("pointermove", (e) => point(e, "pointermove"));
canvas.addEventListener("pointerdown", (e) => { canvas.setPointerCapture(e.pointerId); point(e, "pointerdown"); });
canvas.addEventListener("pointerup", (e) => point(e, "pointerup"));
canvas.addEventListener("click", (e) => point(e, "click"));

const form = document.getElementById("analyze");
form.addEventListener("submit", (e) => {
  e.preventDefault();
  status.textContent = "Analyzing...";
  send({type: "analyze", repo_url: form.repo.value.trim()});
});
form.search.addEventListener("input", () => send({type: "search", term: form.search.value}));
window.addEventListener("resize", resize);
</script>
</body>
</html>
`
