package watch

// indexHTML renders the latest snapshot from the event stream as a
// complexity-colored dependency listing.
const indexHTML = `<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>codegraph watch</title>
<style>
  body { font: 14px/1.4 -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif; margin: 2rem; color: #1f2328; }
  h1 { font-size: 1.2rem; margin: 0 0 .25rem; }
  #meta { color: #656d76; margin-bottom: 1rem; }
  table { border-collapse: collapse; }
  td, th { padding: .2rem .75rem; text-align: left; border-bottom: 1px solid #d0d7de; vertical-align: top; }
  .dot { display: inline-block; width: .7rem; height: .7rem; border-radius: 50%; margin-right: .4rem; }
</style>
</head>
<body>
<h1 id="title">Waiting for the first graph...</h1>
<div id="meta"></div>
<table>
  <thead><tr><th>File</th><th>LOC</th><th>Complexity</th><th>Depends on</th></tr></thead>
  <tbody id="nodes"></tbody>
</table>
<script>
function render(snapshot) {
  const g = snapshot.graph;
  document.getElementById("title").textContent = g.repo_name || "codegraph";
  const m = g.metrics;
  document.getElementById("meta").textContent =
    m.total_files + " files, " + m.total_loc + " lines, " + g.edges.length +
    " dependencies, avg complexity " + m.avg_complexity.toFixed(2) +
    " (snapshot " + snapshot.id + " at " + new Date(snapshot.timestamp).toLocaleTimeString() + ")";
  const deps = {};
  for (const e of g.edges) { (deps[e.source] = deps[e.source] || []).push(e.target); }
  const body = document.getElementById("nodes");
  body.replaceChildren();
  for (const n of g.nodes) {
    const row = document.createElement("tr");
    const file = document.createElement("td");
    const dot = document.createElement("span");
    dot.className = "dot";
    dot.style.background = (snapshot.colors || {})[n.id] || "#8c959f";
    file.append(dot, n.path);
    const loc = document.createElement("td");
    loc.textContent = n.loc;
    const cx = document.createElement("td");
    cx.textContent = n.complexity;
    const out = document.createElement("td");
    out.textContent = (deps[n.id] || []).join(", ");
    row.append(file, loc, cx, out);
    body.append(row);
  }
}
const events = new EventSource("/events");
events.addEventListener("graph", (e) => render(JSON.parse(e.data)));
</script>
</body>
</html>
`
