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


// Package storage defines the persistence interfaces of the retrieval system
// and the serialization helpers shared by their implementations.
//
// Two stores back the engine:
//   - ListingRepository: the structured record store, answering exact filter
//     queries (ranges, enum equality, substring location match).
//   - VectorIndex: the embedding index, answering nearest-neighbor queries by
//     cosine similarity over listing vectors.
//
// The stores are kept eventually consistent by a periodic sync job; the
// retrieval path tolerates staleness and reports the index watermark age
// instead of assuming freshness.
package storage
