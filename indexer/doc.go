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


// Package indexer keeps the vector index in sync with the listing store.
//
// A sync pass pages through the store, embeds each listing's text
// composition in batches, and upserts the resulting unit vectors with their
// enum metadata. The pass finishes by recording a watermark the retrieval
// diagnostics report as index age.
//
// The worker runs passes on a fixed interval and on demand via Trigger.
// Between passes the index may lag the store; the retrieval path tolerates
// that by skipping index entries whose listing is gone.
package indexer
