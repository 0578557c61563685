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


package storage

import (
	"fmt"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/domicil/core"
)

// MarshalVectorEntry serializes a VectorEntry to the MUS wire format used as
// the BadgerDB value encoding.
func MarshalVectorEntry(entry *core.VectorEntry) []byte {
	buf := make([]byte, sizeVectorEntry(entry))
	n := ord.String.Marshal(entry.ListingID, buf)
	n += varint.PositiveInt.Marshal(len(entry.Vector), buf[n:])
	for _, v := range entry.Vector {
		n += raw.Float32.Marshal(v, buf[n:])
	}
	n += ord.String.Marshal(entry.PropertyType, buf[n:])
	n += ord.String.Marshal(entry.ListingType, buf[n:])
	varint.Int64.Marshal(entry.UpdatedAt.UnixMicro(), buf[n:])
	return buf
}

// UnmarshalVectorEntry deserializes a VectorEntry from bytes.
func UnmarshalVectorEntry(data []byte) (*core.VectorEntry, error) {
	entry := &core.VectorEntry{}

	id, n, err := ord.String.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: listing id: %w", ErrSerializationFailed, err)
	}
	entry.ListingID = id

	length, n2, err := varint.PositiveInt.Unmarshal(data[n:])
	if err != nil {
		return nil, fmt.Errorf("%w: vector length: %w", ErrSerializationFailed, err)
	}
	n += n2

	entry.Vector = make([]float32, length)
	for i := 0; i < length; i++ {
		v, n3, err := raw.Float32.Unmarshal(data[n:])
		if err != nil {
			return nil, fmt.Errorf("%w: vector component %d: %w", ErrSerializationFailed, i, err)
		}
		entry.Vector[i] = v
		n += n3
	}

	propertyType, n4, err := ord.String.Unmarshal(data[n:])
	if err != nil {
		return nil, fmt.Errorf("%w: property type: %w", ErrSerializationFailed, err)
	}
	entry.PropertyType = propertyType
	n += n4

	listingType, n5, err := ord.String.Unmarshal(data[n:])
	if err != nil {
		return nil, fmt.Errorf("%w: listing type: %w", ErrSerializationFailed, err)
	}
	entry.ListingType = listingType
	n += n5

	updatedMicro, _, err := varint.Int64.Unmarshal(data[n:])
	if err != nil {
		return nil, fmt.Errorf("%w: updated at: %w", ErrSerializationFailed, err)
	}
	entry.UpdatedAt = time.UnixMicro(updatedMicro).UTC()

	return entry, nil
}

func sizeVectorEntry(entry *core.VectorEntry) int {
	size := ord.String.Size(entry.ListingID)
	size += varint.PositiveInt.Size(len(entry.Vector))
	for _, v := range entry.Vector {
		size += raw.Float32.Size(v)
	}
	size += ord.String.Size(entry.PropertyType)
	size += ord.String.Size(entry.ListingType)
	size += varint.Int64.Size(entry.UpdatedAt.UnixMicro())
	return size
}
