package domain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ImageOwnerKind is the closed set of entity kinds a gallery image can
// attach to. Attachment is modeled as an explicit tagged reference rather
// than a loose (type string, id) pair so an image can never point at an
// unknown entity kind.
type ImageOwnerKind string

const (
	OwnerPlan    ImageOwnerKind = "plan"
	OwnerService ImageOwnerKind = "service"
)

// ImageOwner is a typed reference to the entity a gallery image belongs to.
// Construct values with PlanOwner or ServiceOwner.
type ImageOwner struct {
	Kind ImageOwnerKind `json:"kind"`
	ID   uuid.UUID      `json:"id"`
}

// PlanOwner returns an ImageOwner referencing a plan.
func PlanOwner(planID uuid.UUID) ImageOwner {
	return ImageOwner{Kind: OwnerPlan, ID: planID}
}

// ServiceOwner returns an ImageOwner referencing a catalog service.
func ServiceOwner(serviceID uuid.UUID) ImageOwner {
	return ImageOwner{Kind: OwnerService, ID: serviceID}
}

// Validate checks that the owner reference is complete.
func (o ImageOwner) Validate() error {
	switch o.Kind {
	case OwnerPlan, OwnerService:
	default:
		return fmt.Errorf("%w: unknown image owner kind %q", ErrValidation, o.Kind)
	}
	if o.ID == uuid.Nil {
		return fmt.Errorf("%w: image owner id is required", ErrValidation)
	}
	return nil
}

// GalleryImage is a stored reference to an externally hosted image.
// Upload, naming, and deletion of the underlying file are handled outside
// the core; only the URL is recorded here.
type GalleryImage struct {
	ID       uuid.UUID  `json:"id"`
	Owner    ImageOwner `json:"owner"`
	URL      string     `json:"url"`
	Position int        `json:"position"`
}

// Validate checks the image reference before persistence.
func (g GalleryImage) Validate() error {
	if err := g.Owner.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(g.URL) == "" {
		return fmt.Errorf("%w: image url is required", ErrValidation)
	}
	return nil
}
