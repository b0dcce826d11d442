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


// Package search ranks workspace memories and facts against free-text
// queries.
//
// The Engine type serves every query surface from one immutable index
// snapshot:
//   - Relevance-ranked keyword search over documents and facts
//   - Date-range listings over dated documents
//   - Recency listings over the trailing window of days
//
// Scoring combines exact-phrase, token, partial-token and heading signals
// with configurable weights, and every result carries context snippets
// extracted around the matched tokens. Snapshots are swapped atomically on
// rebuild, so queries stay consistent while the corpus changes underneath.
package search
