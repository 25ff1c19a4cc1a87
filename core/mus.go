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
	"github.com/mus-format/mus-go"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// VectorRecordMUS is the MUS format serializer for VectorRecord.
var VectorRecordMUS = vectorRecordMUS{
	values:   ord.NewSliceSer[float32](varint.Float32),
	metadata: ord.NewMapSer[string, string](ord.String, ord.String),
}

type vectorRecordMUS struct {
	values   mus.Serializer[[]float32]
	metadata mus.Serializer[map[string]string]
}

func (s vectorRecordMUS) Marshal(v VectorRecord, bs []byte) (n int) {
	n = ord.String.Marshal(v.ID, bs)
	n += s.values.Marshal(v.Values, bs[n:])
	n += s.metadata.Marshal(v.Metadata, bs[n:])
	return n
}

func (s vectorRecordMUS) Unmarshal(bs []byte) (v VectorRecord, n int, err error) {
	v.ID, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.Values, n1, err = s.values.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Metadata, n1, err = s.metadata.Unmarshal(bs[n:])
	n += n1
	return
}

func (s vectorRecordMUS) Size(v VectorRecord) (size int) {
	size = ord.String.Size(v.ID)
	size += s.values.Size(v.Values)
	size += s.metadata.Size(v.Metadata)
	return size
}

func (s vectorRecordMUS) Skip(bs []byte) (n int, err error) {
	n, err = ord.String.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = s.values.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = s.metadata.Skip(bs[n:])
	n += n1
	return
}
