package render

const baseCSS = `
body{margin:0;font-family:system-ui,-apple-system,sans-serif;background:#f5f6fa;color:#1f2330}
.app-shell{max-width:880px;margin:0 auto;padding:24px}
header{display:flex;justify-content:space-between;align-items:center;margin-bottom:24px}
.subtitle,.file-meta{color:#667085;font-size:14px}
.badge{background:#eef2ff;color:#3538cd;border-radius:999px;padding:4px 12px;font-size:13px}
.section{background:#fff;border-radius:12px;padding:20px;margin-bottom:16px;box-shadow:0 1px 2px rgba(16,24,40,.06)}
.grid-2{display:grid;grid-template-columns:1fr 1fr;gap:16px}
.select,.input,.text-input{width:100%;padding:8px 10px;border:1px solid #d0d5dd;border-radius:8px;font-size:15px}
.button{background:#3538cd;color:#fff;border:0;border-radius:8px;padding:10px 16px;cursor:pointer;text-decoration:none;font-size:15px}
.button.secondary{background:#eef2ff;color:#3538cd}
.button-row,.toggle-row{display:flex;gap:12px;margin-top:16px;flex-wrap:wrap}
.error,.debug-error{color:#b42318;margin-top:12px}
.question-card{border:1px solid #eaecf0;border-radius:10px;padding:16px;margin-bottom:12px}
.question-index{display:inline-block;background:#3538cd;color:#fff;border-radius:50%;width:26px;height:26px;text-align:center;line-height:26px}
.choice{display:flex;gap:8px;align-items:flex-start;margin:6px 0}
.match-row{display:grid;grid-template-columns:1fr 1fr;gap:12px;margin:6px 0}
.code-window{background:#0f172a;color:#e2e8f0;border-radius:8px;padding:12px;overflow-x:auto}
.result-row{display:flex;justify-content:space-between;padding:6px 0}
.badge-success{color:#067647;font-weight:600}
.badge-fail{color:#b42318;font-weight:600}
.debug-raw{white-space:pre-wrap;background:#f9fafb;padding:12px;border-radius:8px;max-height:400px;overflow:auto}
`
