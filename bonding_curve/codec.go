package bonding_curve

import (
	"bytes"
	"crypto/sha256"
	"fmt"

	ag_binary "github.com/gagliardetto/binary"
)

// CurveStateDiscriminator prefixes every encoded CurveState, following the
// anchor "account:<Name>" convention.
var CurveStateDiscriminator = func() [8]byte {
	var d [8]byte
	sum := sha256.Sum256([]byte("account:BondingCurve"))
	copy(d[:], sum[:8])
	return d
}()

func (obj CurveState) MarshalWithEncoder(encoder *ag_binary.Encoder) (err error) {
	// Write account discriminator:
	if err = encoder.WriteBytes(CurveStateDiscriminator[:], false); err != nil {
		return err
	}
	if err = encoder.Encode(obj.Creator); err != nil {
		return err
	}
	if err = encoder.Encode(obj.Mint); err != nil {
		return err
	}
	if err = encoder.Encode(obj.Authority); err != nil {
		return err
	}
	if err = encoder.Encode(obj.VirtualQuoteReserves); err != nil {
		return err
	}
	if err = encoder.Encode(obj.VirtualBaseReserves); err != nil {
		return err
	}
	if err = encoder.Encode(obj.RealQuoteReserves); err != nil {
		return err
	}
	if err = encoder.Encode(obj.RealBaseReserves); err != nil {
		return err
	}
	if err = encoder.Encode(obj.TotalSupply); err != nil {
		return err
	}
	if err = encoder.Encode(uint8(obj.Status)); err != nil {
		return err
	}
	return encoder.Encode(obj.HasMigrated)
}

func (obj *CurveState) UnmarshalWithDecoder(decoder *ag_binary.Decoder) (err error) {
	// Read and check account discriminator:
	discriminator, err := decoder.ReadNBytes(8)
	if err != nil {
		return err
	}
	if !bytes.Equal(discriminator, CurveStateDiscriminator[:]) {
		return fmt.Errorf("wrong discriminator: wanted %x, got %x", CurveStateDiscriminator[:], discriminator)
	}
	if err = decoder.Decode(&obj.Creator); err != nil {
		return err
	}
	if err = decoder.Decode(&obj.Mint); err != nil {
		return err
	}
	if err = decoder.Decode(&obj.Authority); err != nil {
		return err
	}
	if err = decoder.Decode(&obj.VirtualQuoteReserves); err != nil {
		return err
	}
	if err = decoder.Decode(&obj.VirtualBaseReserves); err != nil {
		return err
	}
	if err = decoder.Decode(&obj.RealQuoteReserves); err != nil {
		return err
	}
	if err = decoder.Decode(&obj.RealBaseReserves); err != nil {
		return err
	}
	if err = decoder.Decode(&obj.TotalSupply); err != nil {
		return err
	}
	var status uint8
	if err = decoder.Decode(&status); err != nil {
		return err
	}
	if Status(status) > StatusMigrated {
		return fmt.Errorf("invalid curve status %d", status)
	}
	obj.Status = Status(status)
	return decoder.Decode(&obj.HasMigrated)
}

func EncodeCurveState(state *CurveState) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := ag_binary.NewBorshEncoder(buf).Encode(state); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func ParseCurveState(data []byte) (*CurveState, error) {
	state := new(CurveState)
	if err := ag_binary.NewBorshDecoder(data).Decode(state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal CurveState: %w", err)
	}
	return state, nil
}
