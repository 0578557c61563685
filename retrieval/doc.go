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


// Package retrieval orchestrates listing search across the structured record
// store and the semantic vector index.
//
// Three strategies are supported:
//
//   - StrategyStructured runs only the exact-filter store and returns its
//     results verbatim.
//   - StrategySemantic runs only embedding similarity search.
//   - StrategyHybrid runs both. When the structured store returns matches,
//     semantic similarity re-ranks them via weighted score fusion; when it
//     returns nothing, the engine falls back to pure semantic results.
//
// Every retrieval also produces an Evaluation that scores each returned
// listing against the constraint set it was retrieved for, so callers can
// tell a good answer from a merely nonempty one.
//
// A source that fails or times out is unavailable, not empty: single-source
// strategies surface the failure, hybrid degrades to whichever source still
// answers and only errors when both are gone. An empty result from healthy
// sources is a valid answer.
package retrieval
