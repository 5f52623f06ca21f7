// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// PaperRef identifies one paper in the repository listing. It is produced by
// the repository client and never modified downstream.
type PaperRef struct {
	// ID is the repository accession (e.g. "2501.00001").
	ID string `json:"arxiv_id" yaml:"arxiv_id" validate:"required"`

	// Title is the paper title.
	Title string `json:"title" yaml:"title" validate:"required"`

	// Authors lists the paper authors in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// PrimaryCategory is the repository category the paper was filed under
	// (e.g. "hep-ph").
	PrimaryCategory string `json:"primary_category" yaml:"primary_category"`

	// Abstract is the paper abstract. It is only used to build the selection
	// prompt and is not part of the selected candidate.
	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	// Submitted is the first submission time reported by the repository.
	Submitted time.Time `json:"submitted,omitzero" yaml:"submitted,omitempty"`
}

// InterestingPaper is a PaperRef the selector chose for discussion, with the
// reason for the choice in English and Japanese. It is the unit of work
// handed to the batch runner.
type InterestingPaper struct {
	ID              string   `json:"arxiv_id" yaml:"arxiv_id" validate:"required"`
	Title           string   `json:"title" yaml:"title" validate:"required"`
	Authors         []string `json:"authors" yaml:"authors" validate:"required"`
	ReasonEN        string   `json:"reason_en" yaml:"reason_en" validate:"required"`
	ReasonJA        string   `json:"reason_ja" yaml:"reason_ja" validate:"required"`
	PrimaryCategory string   `json:"primary_category" yaml:"primary_category" validate:"required"`
}

// URL returns the abstract page of the paper.
func (p InterestingPaper) URL() string {
	return "https://arxiv.org/abs/" + p.ID
}
