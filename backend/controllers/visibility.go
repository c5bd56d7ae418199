package controllers

import "campus/backend/models"

// MaterialView is a material as seen by one viewer. Metadata stays
// visible on locked materials so a non-enrollee can see that the content
// exists; the content-bearing fields are nulled.
type MaterialView struct {
	ID            uint              `json:"id"`
	Title         string            `json:"title"`
	Description   string            `json:"description"`
	VisibleTo     models.Visibility `json:"visible_to"`
	Visible       bool              `json:"visible"`
	Locked        bool              `json:"locked"`
	ContentURL    *string           `json:"content_url"`
	ContentType   *string           `json:"content_type"`
	AttachmentURL *string           `json:"attachment_url"`
}

// MaterialVisible applies the tier rule: PUBLIC to everyone, everything
// to managers, ENROLLED to approved enrollees. STAFF only passes through
// the manager branch.
func MaterialVisible(m models.CourseMaterial, vc *ViewerContext) bool {
	if m.VisibleTo == models.VisibilityPublic {
		return true
	}
	if vc.CanManage {
		return true
	}
	return m.VisibleTo == models.VisibilityEnrolled && vc.EnrollmentApproved
}

// ResolveMaterial builds the per-viewer view of one material.
func ResolveMaterial(m models.CourseMaterial, vc *ViewerContext) MaterialView {
	view := MaterialView{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		VisibleTo:   m.VisibleTo,
	}

	if !MaterialVisible(m, vc) {
		view.Locked = true
		return view
	}

	view.Visible = true
	view.ContentURL = &m.ContentURL
	view.ContentType = &m.ContentType
	view.AttachmentURL = &m.AttachmentURL
	return view
}
