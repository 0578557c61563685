// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"fmt"
	"strings"
)

// ValidateConstraintSet validates a ConstraintSet according to domain rules.
//
// Validation rules:
//   - at least one constraint must be present
//   - range bounds must be ordered (min <= max); bounds are never swapped
//   - enum fields must match the known vocabulary (case-insensitive)
//   - a radius requires coordinates and must be positive
//
// NOT validated:
//   - FreeText content (any residual text is allowed)
//   - coordinate plausibility (geocoding happens upstream)
func ValidateConstraintSet(c *ConstraintSet) error {
	if c == nil {
		return fmt.Errorf("%w: constraint set is nil", ErrInvalidConstraint)
	}

	if c.IsEmpty() {
		return fmt.Errorf("%w: %w", ErrInvalidConstraint, ErrEmptyConstraintSet)
	}

	if c.PriceMin != nil && c.PriceMax != nil && *c.PriceMin > *c.PriceMax {
		return fmt.Errorf("%w: %w", ErrInvalidConstraint, ErrInvalidPriceRange)
	}

	if c.BedroomsMin != nil && c.BedroomsMax != nil && *c.BedroomsMin > *c.BedroomsMax {
		return fmt.Errorf("%w: %w", ErrInvalidConstraint, ErrInvalidBedroomRange)
	}

	if c.FloorsMin != nil && c.FloorsMax != nil && *c.FloorsMin > *c.FloorsMax {
		return fmt.Errorf("%w: %w", ErrInvalidConstraint, ErrInvalidFloorRange)
	}

	if c.PropertyType != "" && !containsFold(PropertyTypes, c.PropertyType) {
		return fmt.Errorf("%w: %w: %q", ErrInvalidConstraint, ErrUnknownPropertyType, c.PropertyType)
	}

	if c.ListingType != "" && !containsFold(ListingTypes, c.ListingType) {
		return fmt.Errorf("%w: %w: %q", ErrInvalidConstraint, ErrUnknownListingType, c.ListingType)
	}

	if c.RadiusKm != nil {
		if *c.RadiusKm <= 0 {
			return fmt.Errorf("%w: %w", ErrInvalidConstraint, ErrInvalidRadius)
		}
		if c.Coordinates == nil {
			return fmt.Errorf("%w: %w: radius without coordinates", ErrInvalidConstraint, ErrInvalidRadius)
		}
	}

	return nil
}

// ValidateListing validates a Listing according to domain rules.
//
// Validation rules:
//   - ID must not be empty
//   - Title must not be empty
//   - enum fields, when set, must match the known vocabulary
func ValidateListing(l *Listing) error {
	if l == nil {
		return fmt.Errorf("%w: listing is nil", ErrInvalidListing)
	}

	if l.ID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidListing, ErrEmptyListingID)
	}

	if l.Title == "" {
		return fmt.Errorf("%w: %w", ErrInvalidListing, ErrEmptyListingTitle)
	}

	if l.PropertyType != "" && !containsFold(PropertyTypes, l.PropertyType) {
		return fmt.Errorf("%w: %w: %q", ErrInvalidListing, ErrUnknownPropertyType, l.PropertyType)
	}

	if l.ListingType != "" && !containsFold(ListingTypes, l.ListingType) {
		return fmt.Errorf("%w: %w: %q", ErrInvalidListing, ErrUnknownListingType, l.ListingType)
	}

	return nil
}

func containsFold(values []string, v string) bool {
	for _, candidate := range values {
		if strings.EqualFold(candidate, v) {
			return true
		}
	}
	return false
}
