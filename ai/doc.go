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


// Package ai provides abstractions for the AI services used by Domicil.
//
// This package defines interfaces for text embeddings and natural-language
// constraint parsing. It follows the dependency inversion principle: the
// retrieval engine and the index sync job depend on these abstractions, not
// on concrete API clients.
//
// # Implementation Packages
//
// The ai package includes two implementation sub-packages:
//   - ai/openai: Production implementation using OpenAI-compatible APIs
//   - ai/mock: Test doubles for unit testing without external dependencies
//
// Public constructors (openai.NewProvider, openai.NewEmbedder, etc.) return
// interface types to enforce abstraction. Test utility constructors
// (mock.NewMockEmbedder, mock.NewMockConstraintParser) return concrete types
// to enable behavior injection and call-count assertions.
package ai
