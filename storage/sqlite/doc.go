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


// Package sqlite implements storage.ListingRepository on SQLite.
//
// The store answers the structured half of retrieval: inclusive range
// predicates on price, bedrooms and floors, case-insensitive enum equality,
// and OR-combined substring matching of the location keyword over the
// address, district, city and title columns. Results come back in
// store-native (insertion) order; the store never reranks.
package sqlite
