package models

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Report is one litter sighting: image, location, classification and creation time
type Report struct {
	ID           string    `bson:"id" json:"id" validate:"required"`
	Timestamp    int64     `bson:"timestamp" json:"timestamp" validate:"gt=0"`
	ImageURL     string    `bson:"imageUrl" json:"imageUrl" validate:"required"`
	LocationName string    `bson:"locationName" json:"locationName" validate:"max=200"`
	Latitude     *float64  `bson:"latitude,omitempty" json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude    *float64  `bson:"longitude,omitempty" json:"longitude,omitempty" validate:"omitempty,longitude"`
	TrashType    TrashType `bson:"trashType" json:"trashType" validate:"known"`
	Severity     Severity  `bson:"severity" json:"severity" validate:"known"`
	Description  string    `bson:"description" json:"description"`
	AnalysisRaw  string    `bson:"analysisRaw,omitempty" json:"analysisRaw,omitempty"`
}

// CreatedAt returns the report timestamp as a time.Time
func (r Report) CreatedAt() time.Time {
	return time.UnixMilli(r.Timestamp)
}

// HasCoordinates reports whether geolocation was captured for the report.
func (r Report) HasCoordinates() bool {
	return r.Latitude != nil && r.Longitude != nil
}

type enumValue interface {
	Valid() bool
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("known", func(fl validator.FieldLevel) bool {
		e, ok := fl.Field().Interface().(enumValue)
		return ok && e.Valid()
	})
	return v
}

// Validate checks the rules every stored report must satisfy
func (r Report) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("report %q: %w", r.ID, err)
	}
	return nil
}
