// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"github.com/ava-labs/vaultvm/codec"
	"github.com/ava-labs/vaultvm/consts"
)

// Result is the outcome of executing a transaction. A failed transaction
// leaves no trace in state.
type Result struct {
	Success bool     `json:"success"`
	Error   []byte   `json:"error"`
	Outputs [][]byte `json:"outputs"`
}

func (r *Result) Size() int {
	size := consts.BoolLen + codec.BytesLen(r.Error) + consts.ByteLen
	for _, output := range r.Outputs {
		size += codec.BytesLen(output)
	}
	return size
}

func (r *Result) Marshal(p *codec.Packer) {
	p.PackBool(r.Success)
	p.PackBytes(r.Error)
	p.PackByte(uint8(len(r.Outputs)))
	for _, output := range r.Outputs {
		p.PackBytes(output)
	}
}

func UnmarshalResult(p *codec.Packer) (*Result, error) {
	result := &Result{
		Success: p.UnpackBool(),
	}
	p.UnpackBytes(consts.MaxInt, false, &result.Error)
	numOutputs := p.UnpackByte()
	for i := uint8(0); i < numOutputs; i++ {
		var output []byte
		p.UnpackBytes(consts.MaxInt, false, &output)
		result.Outputs = append(result.Outputs, output)
	}
	if !result.Success && len(result.Error) == 0 {
		p.AddErr(ErrInvalidObject)
	}
	return result, p.Err()
}

func MarshalResults(src []*Result) ([]byte, error) {
	size := consts.IntLen
	for _, result := range src {
		size += result.Size()
	}
	p := codec.NewWriter(size, consts.MaxInt)
	p.PackInt(uint32(len(src)))
	for _, result := range src {
		result.Marshal(p)
	}
	return p.Bytes(), p.Err()
}

func UnmarshalResults(src []byte) ([]*Result, error) {
	p := codec.NewReader(src, consts.MaxInt)
	items := p.UnpackInt(false)
	var results []*Result
	for i := uint32(0); i < items; i++ {
		result, err := UnmarshalResult(p)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	if !p.Empty() {
		return nil, ErrInvalidObject
	}
	return results, p.Err()
}
