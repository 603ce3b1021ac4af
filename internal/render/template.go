package render

// pageTemplate 以 A4 (96 DPI) 尺寸排版，每页之间强制分页。
const pageTemplate = `<!DOCTYPE html>
<html lang="zh-CN">
<head>
<meta charset="UTF-8">
<title>{{.Title}}</title>
<style>
  body { margin: 0; background: #f3f4f6; font-family: "PingFang SC", "Microsoft YaHei", sans-serif; font-size: 10pt; color: #1f2937; }
  .preview { display: flex; flex-direction: column; align-items: center; gap: 24px; padding: 24px 0; }
  .page { width: 794px; min-height: 1122px; box-sizing: border-box; padding: 40px 48px; background: #fff; box-shadow: 0 1px 4px rgba(0,0,0,.12); }
  .page-break { break-after: page; page-break-after: always; }
  .basic { display: flex; gap: 24px; align-items: center; margin-bottom: 16px; }
  .basic.layout-center { flex-direction: column; text-align: center; }
  .basic.layout-right { flex-direction: row-reverse; }
  .basic .avatar { width: 96px; height: 96px; object-fit: cover; border-radius: 8px; }
  .basic h1 { margin: 0 0 8px; font-size: 22pt; }
  .fields { display: flex; flex-wrap: wrap; gap: 4px 16px; margin: 0; padding: 0; list-style: none; }
  .section h2 { margin: 16px 0 8px; padding-bottom: 4px; border-bottom: 1px solid #e5e7eb; font-size: 13pt; }
  .timeline-item { margin-bottom: 10px; }
  .timeline-head { display: flex; justify-content: space-between; font-weight: 600; }
  .timeline-sub { color: #4b5563; }
  @media print {
    body { background: none; }
    .preview { display: block; padding: 0; transform: none !important; }
    .page { box-shadow: none; }
  }
</style>
</head>
<body>
<main class="preview {{.ContainerClass}} {{.SpacingClass}}" style="transform: scale({{.Scale}}); transform-origin: top center;">
{{- range .Pages}}
<section class="page{{if not .Last}} page-break{{end}}" id="page-{{.Number}}" data-page="{{.Number}}">
  {{- with .Basic}}
  <header class="basic layout-{{.Layout}}">
    {{- if .Avatar}}<img class="avatar" src="{{.Avatar}}" alt="{{.Name}}">{{end}}
    <div>
      <h1>{{.Name}}</h1>
      <ul class="fields">
        {{- range .Fields}}<li data-icon="{{.Icon}}"><span class="label">{{.Label}}</span> {{.Value}}</li>{{end}}
      </ul>
    </div>
  </header>
  {{- end}}
  {{- range .Sections}}
  <div class="section section-{{.Kind}}" id="section-{{.ID}}" data-icon="{{.Icon}}">
    <h2>{{.Title}}</h2>
    {{- range .Timeline}}
    <div class="timeline-item">
      <div class="timeline-head"><span>{{.Title}}</span><span class="period">{{.Period}}</span></div>
      {{- if or .Subtitle .Secondary}}<div class="timeline-sub">{{.Subtitle}}{{if and .Subtitle .Secondary}} · {{end}}{{.Secondary}}</div>{{end}}
      {{- if .Description}}<div class="description">{{.Description}}</div>{{end}}
    </div>
    {{- end}}
    {{- if .List}}
    <ul class="list">{{range .List}}<li>{{.}}</li>{{end}}</ul>
    {{- end}}
    {{- if .Text}}<div class="rich-text">{{.Text}}</div>{{end}}
    {{- if .Custom}}
    <dl class="custom">{{range .Custom}}<dt>{{.Label}}</dt><dd>{{.Value}}</dd>{{end}}</dl>
    {{- end}}
  </div>
  {{- end}}
</section>
{{- end}}
</main>
<div id="render-ready" hidden></div>
{{- if .Print}}
<script>window.addEventListener("load", function () { window.print(); });</script>
{{- end}}
</body>
</html>
`
