package proof

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/raxhvl/genesix/pkgs/catalog"
	"github.com/raxhvl/genesix/pkgs/errs"
)

// Proof is the tagged union of proof values. Exactly one of Answer or
// Images is populated, selected by Type. Every consumer switches
// exhaustively on Type.
type Proof struct {
	Type   catalog.ProofType `json:"type"`
	Answer string            `json:"answer"`
	Images []string          `json:"images"`
}

// Link builds a link proof.
func Link(u string) Proof {
	return Proof{Type: catalog.ProofLink, Answer: u}
}

// Text builds a free-text proof.
func Text(s string) Proof {
	return Proof{Type: catalog.ProofText, Answer: s}
}

// Images builds an image proof from uploaded URLs.
func Images(urls []string) Proof {
	return Proof{Type: catalog.ProofImage, Images: urls}
}

// ForTask wraps a raw answer into the proof shape the task requires.
// Image tasks must go through the Collector instead.
func ForTask(task *catalog.Task, answer string) (Proof, error) {
	switch task.ProofType {
	case catalog.ProofLink:
		return Link(answer), nil
	case catalog.ProofText:
		return Text(answer), nil
	case catalog.ProofImage:
		return Proof{}, errs.New(errs.CodeValidation, "image tasks require uploaded proof images")
	default:
		return Proof{}, errs.Newf(errs.CodeValidation, "unknown proof type %q", task.ProofType)
	}
}

// Check verifies the proof value matches its declared shape.
func (p Proof) Check() error {
	switch p.Type {
	case catalog.ProofLink:
		u, err := url.Parse(strings.TrimSpace(p.Answer))
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return errs.New(errs.CodeValidation, "link proof must be an http(s) URL")
		}
		return nil
	case catalog.ProofText:
		if strings.TrimSpace(p.Answer) == "" {
			return errs.New(errs.CodeValidation, "text proof must not be empty")
		}
		return nil
	case catalog.ProofImage:
		if len(p.Images) == 0 {
			return errs.New(errs.CodeValidation, "image proof requires at least one uploaded image")
		}
		return nil
	default:
		return errs.Newf(errs.CodeValidation, "unknown proof type %q", p.Type)
	}
}

// String renders a short description for logs.
func (p Proof) String() string {
	switch p.Type {
	case catalog.ProofImage:
		return fmt.Sprintf("image(%d)", len(p.Images))
	default:
		return string(p.Type)
	}
}
