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

import "errors"

// Domain validation errors
var (
	// ErrInvalidConstraint indicates a ConstraintSet failed validation.
	// It is never silently corrected; the caller must fix the input.
	ErrInvalidConstraint = errors.New("invalid constraint set")

	// ErrInvalidListing indicates a Listing failed validation.
	ErrInvalidListing = errors.New("invalid listing")

	// ErrEmptyConstraintSet indicates no constraint of any kind is present.
	ErrEmptyConstraintSet = errors.New("constraint set is empty")

	// ErrInvalidPriceRange indicates priceMin > priceMax.
	ErrInvalidPriceRange = errors.New("price minimum exceeds maximum")

	// ErrInvalidBedroomRange indicates bedroomsMin > bedroomsMax.
	ErrInvalidBedroomRange = errors.New("bedroom minimum exceeds maximum")

	// ErrInvalidFloorRange indicates floorsMin > floorsMax.
	ErrInvalidFloorRange = errors.New("floor minimum exceeds maximum")

	// ErrInvalidRadius indicates a non-positive radius or a radius without coordinates.
	ErrInvalidRadius = errors.New("invalid search radius")

	// ErrUnknownPropertyType indicates a property type outside PropertyTypes.
	ErrUnknownPropertyType = errors.New("unknown property type")

	// ErrUnknownListingType indicates a listing type outside ListingTypes.
	ErrUnknownListingType = errors.New("unknown listing type")

	// ErrEmptyListingID indicates the listing ID field is empty.
	ErrEmptyListingID = errors.New("listing id cannot be empty")

	// ErrEmptyListingTitle indicates the listing title field is empty.
	ErrEmptyListingTitle = errors.New("listing title cannot be empty")
)
