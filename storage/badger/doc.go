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


// Package badger implements storage.VectorIndex on BadgerDB.
//
// Entries hold unit-length listing vectors plus the metadata the semantic
// post-filter reads. Nearest-neighbor search is a full prefix scan with a
// dot product per entry; the catalog is bounded (thousands of listings), so
// a scan beats the operational cost of a dedicated ANN structure.
package badger
