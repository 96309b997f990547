//
// Copyright © 2017 Solus Project
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//

package telemetrylog

import (
	"bytes"
	"encoding/gob"
	"io"
)

// gobEncoderLight reuses a buffer across Encode calls to avoid reallocating
// it for every event.
type gobEncoderLight struct {
	bytes   *bytes.Buffer
	encoder *gob.Encoder
}

// gobDecoderLight is the Decode-side counterpart of gobEncoderLight.
type gobDecoderLight struct {
	bytes   *bytes.Buffer
	decoder *gob.Decoder
}

func newGobEncoderLight() *gobEncoderLight {
	ret := &gobEncoderLight{bytes: &bytes.Buffer{}}
	ret.encoder = gob.NewEncoder(ret.bytes)
	return ret
}

func newGobDecoderLight() *gobDecoderLight {
	ret := &gobDecoderLight{bytes: &bytes.Buffer{}}
	ret.decoder = gob.NewDecoder(ret.bytes)
	return ret
}

// EncodeType converts the given pointer into a gob encoded byte set.
func (g *gobEncoderLight) EncodeType(t interface{}) ([]byte, error) {
	defer g.bytes.Reset()
	if err := g.encoder.Encode(t); err != nil {
		return nil, err
	}
	return g.bytes.Bytes(), nil
}

// DecodeType decodes buf into the pointer outT.
func (g *gobDecoderLight) DecodeType(buf []byte, outT interface{}) error {
	defer g.bytes.Reset()
	reader := bytes.NewReader(buf)
	if _, err := io.Copy(g.bytes, reader); err != nil {
		return err
	}
	return g.decoder.Decode(outT)
}
