package handler

import (
	"roster/internal/render"
	"roster/internal/service"
)

// pageUI is the controller's view of the browser page. The form and table
// persist between requests; notices and the confirmation state last for
// one request.
type pageUI struct {
	form        service.StudentForm
	submitLabel string
	table       render.Table

	notices       []string
	confirmed     bool
	prompt        string
	pendingAction string
}

func (p *pageUI) beginRequest(action string, confirmed bool) {
	p.notices = nil
	p.prompt = ""
	p.pendingAction = action
	p.confirmed = confirmed
}

// endRequest drops what was shown once.
func (p *pageUI) endRequest() {
	p.notices = nil
	p.prompt = ""
	p.confirmed = false
}

func (p *pageUI) ReadForm() service.StudentForm { return p.form }

func (p *pageUI) FillForm(form service.StudentForm) { p.form = form }

func (p *pageUI) SetSubmitLabel(label string) { p.submitLabel = label }

func (p *pageUI) Notify(message string) { p.notices = append(p.notices, message) }

func (p *pageUI) Paint(table render.Table) { p.table = table }

// Confirm succeeds only when the request already carries confirm=yes;
// otherwise the prompt is rendered with a button that repeats the request.
func (p *pageUI) Confirm(prompt string) bool {
	if p.confirmed {
		return true
	}
	p.prompt = prompt
	return false
}
