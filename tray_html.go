package main

import (
	"html/template"
	"strings"

	"launchtray/model"
	"launchtray/tray"
)

// trayPage is the data behind the tray window.
type trayPage struct {
	Title      string
	Style      model.StyleConfig
	// HandleIcon is a plain string for config-supplied icons, which the
	// template sanitizes, or a template.URL for the built-in one.
	HandleIcon any
	Query      string
	List       []model.AppEntry
	Hotbar     []model.AppEntry
	ListHeight int
	// Live adds the satellite script: the search box publishes on the bus
	// and the containers refresh when the tray changes.
	Live bool
}

var trayTemplate = template.Must(template.New("tray").Funcs(template.FuncMap{"css": cssValue}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
* { margin: 0; padding: 0; box-sizing: border-box; }
body {
    font-family: -apple-system, BlinkMacSystemFont, sans-serif;
    background: {{with .Style.ListBackgroundColor}}{{css .}}{{else}}#1e1e1e{{end}};
    color: #e0e0e0;
    overflow: hidden;
}
#launch-bar {
    display: flex;
    height: 72px;
}
#launch-bar-handle {
    width: 72px;
    display: flex;
    align-items: center;
    justify-content: center;
    {{with .Style.IconBackgroundImage}}background: url({{.}});{{end}}
}
.launch-bar-handle-img { width: 40px; height: 40px; }
#launch-bar-tearout {
    flex: 1;
    background: {{with .Style.HotbarBackgroundColor}}{{css .}}{{else}}#181818{{end}};
}
#app-hotbar, .app-list {
    display: flex;
    flex-wrap: wrap;
}
.app-list { overflow-y: auto; }
.app-square {
    width: 96px;
    height: 96px;
    display: flex;
    align-items: center;
    justify-content: center;
    cursor: pointer;
}
#app-hotbar .app-square { width: 72px; height: 72px; }
.app-content { display: flex; flex-direction: column; align-items: center; gap: 6px; }
.app-icon { width: 40px; height: 40px; }
.app-name { font-size: 12px; }
#searchBar {
    width: 100%;
    border: none;
    padding: 8px 12px;
    font-size: 14px;
    background: {{with .Style.SearchBarColor}}{{css .}}{{else}}#2a2a2a{{end}};
    color: {{with .Style.SearchBarTextColor}}{{css .}}{{else}}#e0e0e0{{end}};
}
{{with .Style.ListAppHoverColor}}.app-list > .app-square:hover { background: {{css .}}; }{{end}}
{{with .Style.ListAppTextColor}}.app-list > .app-square > .app-content > .app-name { color: {{css .}} !important; }{{end}}
</style>
</head>
<body>
<div id="launch-bar">
  <div id="launch-bar-handle"><img class="launch-bar-handle-img" draggable="false" src="{{.HandleIcon}}"></div>
  <div id="launch-bar-tearout">
    <div id="app-hotbar">
{{- range .Hotbar}}
      <div class="app-square" data-id="{{.ID}}" title="{{.Description}}">
        <div class="app-content"><img class="app-icon" draggable="false" src="{{.IconRef}}"></div>
      </div>
{{- end}}
    </div>
  </div>
</div>
<input id="searchBar" type="text" placeholder="Search" value="{{.Query}}">
<div class="app-list" style="height: {{.ListHeight}}px">
{{- range .List}}
  <div class="app-square" data-id="{{.ID}}" title="{{.Description}}">
    <div class="app-content">
      <img class="app-icon" draggable="false" src="{{.IconRef}}">
      <span class="app-name">{{.Title}}</span>
    </div>
  </div>
{{- end}}
</div>
{{- if .Live}}
<script>
const bus = new WebSocket("ws://" + location.host + "/ws");
const search = document.getElementById("searchBar");
function bindRun() {
  document.querySelectorAll(".app-square").forEach((el) => {
    el.onclick = () => fetch("/run?entry=" + encodeURIComponent(el.dataset.id), {method: "POST"});
  });
}
bus.onopen = () => bus.send(JSON.stringify({action: "subscribe", topic: "tray-changed"}));
bus.onmessage = async () => {
  const page = new DOMParser().parseFromString(await (await fetch("/")).text(), "text/html");
  for (const sel of ["#app-hotbar", ".app-list"]) {
    document.querySelector(sel).replaceWith(page.querySelector(sel));
  }
  bindRun();
};
document.getElementById("launch-bar-handle").addEventListener("contextmenu", (e) => {
  e.preventDefault();
  bus.send(JSON.stringify({action: "publish", topic: "tray-click", data: {x: e.screenX, y: e.screenY}}));
});
search.addEventListener("keyup", (e) => {
  const topic = e.key === "Enter" ? "filter-input-enter" : "filter-input";
  bus.send(JSON.stringify({action: "publish", topic: topic, data: search.value}));
});
bindRun();
</script>
{{- end}}
</body>
</html>
`))

// renderTrayHTML renders the tray window for snap.
func renderTrayHTML(snap tray.Snapshot, live bool) (string, error) {
	page := trayPage{
		Title:      snap.Style.WindowTitle,
		Style:      snap.Style,
		HandleIcon: snap.Style.Icon,
		Query:      snap.Query,
		List:       snap.List,
		Hotbar:     snap.Hotbar,
		ListHeight: snap.ListHeight,
		Live:       live,
	}
	if page.Title == "" {
		page.Title = "launchtray"
	}
	if snap.Style.Icon == "" {
		page.HandleIcon = template.URL(iconDataURI())
	}

	var b strings.Builder
	if err := trayTemplate.Execute(&b, page); err != nil {
		return "", err
	}
	return b.String(), nil
}

// cssValue admits a style color as a raw CSS value unless it could close
// the declaration it sits in.
func cssValue(s string) template.CSS {
	if strings.ContainsAny(s, ";{}<>\\\"'") {
		return ""
	}
	return template.CSS(s)
}
