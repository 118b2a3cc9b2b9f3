package epbs

import (
	ssz "github.com/ferranbt/fastssz"
	"github.com/prysmaticlabs/go-bitfield"

	fieldparams "github.com/gloaslabs/gloas/config/fieldparams"
	"github.com/gloaslabs/gloas/consensus-types/primitives"
)

// Wire sizes of the fixed-size gossip messages. Any deviation in width or
// field order breaks cross-client compatibility.
const (
	executionPayloadBidSize       = 192
	signedExecutionPayloadBidSize = executionPayloadBidSize + 96
	payloadAttestationDataSize    = 41
	payloadAttestationSize        = 64 + payloadAttestationDataSize + 96
	payloadAttestationMsgSize     = 8 + payloadAttestationDataSize + 96
)

// Wire sizes of the envelope encoding. The payload and envelope are variable
// size; the constants below are their fixed parts and element widths.
const (
	withdrawalSize                          = 44
	kzgCommitmentSize                       = 48
	executionPayloadFixedSize               = 220
	executionPayloadEnvelopeFixedSize       = 88
	signedExecutionPayloadEnvelopeFixedSize = 100
	maxTransactionsPerPayload               = 1048576
	maxBytesPerTransaction                  = 1073741824
)

// MarshalSSZ ssz marshals the ExecutionPayloadBid object.
func (b *ExecutionPayloadBid) MarshalSSZ() ([]byte, error) {
	return ssz.MarshalSSZ(b)
}

// MarshalSSZTo ssz marshals the ExecutionPayloadBid object to a target array.
func (b *ExecutionPayloadBid) MarshalSSZTo(buf []byte) ([]byte, error) {
	dst := buf
	if len(b.ParentBlockHash) != 32 || len(b.ParentBlockRoot) != 32 || len(b.BlockHash) != 32 ||
		len(b.PrevRandao) != 32 || len(b.BlobKzgCommitmentsRoot) != 32 {
		return nil, ssz.ErrBytesLength
	}
	dst = append(dst, b.ParentBlockHash...)
	dst = append(dst, b.ParentBlockRoot...)
	dst = append(dst, b.BlockHash...)
	dst = append(dst, b.PrevRandao...)
	dst = append(dst, b.BlobKzgCommitmentsRoot...)
	dst = ssz.MarshalUint64(dst, b.GasLimit)
	dst = ssz.MarshalUint64(dst, uint64(b.BuilderIndex))
	dst = ssz.MarshalUint64(dst, uint64(b.Slot))
	dst = ssz.MarshalUint64(dst, uint64(b.Value))
	return dst, nil
}

// UnmarshalSSZ ssz unmarshals the ExecutionPayloadBid object.
func (b *ExecutionPayloadBid) UnmarshalSSZ(buf []byte) error {
	if len(buf) != executionPayloadBidSize {
		return ssz.ErrSize
	}
	b.ParentBlockHash = append([]byte{}, buf[0:32]...)
	b.ParentBlockRoot = append([]byte{}, buf[32:64]...)
	b.BlockHash = append([]byte{}, buf[64:96]...)
	b.PrevRandao = append([]byte{}, buf[96:128]...)
	b.BlobKzgCommitmentsRoot = append([]byte{}, buf[128:160]...)
	b.GasLimit = ssz.UnmarshallUint64(buf[160:168])
	b.BuilderIndex = primitives.BuilderIndex(ssz.UnmarshallUint64(buf[168:176]))
	b.Slot = primitives.Slot(ssz.UnmarshallUint64(buf[176:184]))
	b.Value = primitives.Gwei(ssz.UnmarshallUint64(buf[184:192]))
	return nil
}

// SizeSSZ returns the ssz encoded size in bytes for the ExecutionPayloadBid object.
func (b *ExecutionPayloadBid) SizeSSZ() int {
	return executionPayloadBidSize
}

// MarshalSSZ ssz marshals the SignedExecutionPayloadBid object.
func (s *SignedExecutionPayloadBid) MarshalSSZ() ([]byte, error) {
	return ssz.MarshalSSZ(s)
}

// MarshalSSZTo ssz marshals the SignedExecutionPayloadBid object to a target array.
func (s *SignedExecutionPayloadBid) MarshalSSZTo(buf []byte) ([]byte, error) {
	if s.Message == nil {
		s.Message = new(ExecutionPayloadBid)
	}
	dst, err := s.Message.MarshalSSZTo(buf)
	if err != nil {
		return nil, err
	}
	if len(s.Signature) != 96 {
		return nil, ssz.ErrBytesLength
	}
	dst = append(dst, s.Signature...)
	return dst, nil
}

// UnmarshalSSZ ssz unmarshals the SignedExecutionPayloadBid object.
func (s *SignedExecutionPayloadBid) UnmarshalSSZ(buf []byte) error {
	if len(buf) != signedExecutionPayloadBidSize {
		return ssz.ErrSize
	}
	s.Message = new(ExecutionPayloadBid)
	if err := s.Message.UnmarshalSSZ(buf[0:executionPayloadBidSize]); err != nil {
		return err
	}
	s.Signature = append([]byte{}, buf[executionPayloadBidSize:]...)
	return nil
}

// SizeSSZ returns the ssz encoded size in bytes for the SignedExecutionPayloadBid object.
func (s *SignedExecutionPayloadBid) SizeSSZ() int {
	return signedExecutionPayloadBidSize
}

// MarshalSSZ ssz marshals the PayloadAttestationData object.
func (d *PayloadAttestationData) MarshalSSZ() ([]byte, error) {
	return ssz.MarshalSSZ(d)
}

// MarshalSSZTo ssz marshals the PayloadAttestationData object to a target array.
func (d *PayloadAttestationData) MarshalSSZTo(buf []byte) ([]byte, error) {
	dst := buf
	if len(d.BeaconBlockRoot) != 32 {
		return nil, ssz.ErrBytesLength
	}
	dst = append(dst, d.BeaconBlockRoot...)
	dst = ssz.MarshalUint64(dst, uint64(d.Slot))
	dst = ssz.MarshalBool(dst, d.PayloadPresent)
	return dst, nil
}

// UnmarshalSSZ ssz unmarshals the PayloadAttestationData object.
func (d *PayloadAttestationData) UnmarshalSSZ(buf []byte) error {
	if len(buf) != payloadAttestationDataSize {
		return ssz.ErrSize
	}
	d.BeaconBlockRoot = append([]byte{}, buf[0:32]...)
	d.Slot = primitives.Slot(ssz.UnmarshallUint64(buf[32:40]))
	d.PayloadPresent = ssz.UnmarshalBool(buf[40:41])
	return nil
}

// SizeSSZ returns the ssz encoded size in bytes for the PayloadAttestationData object.
func (d *PayloadAttestationData) SizeSSZ() int {
	return payloadAttestationDataSize
}

// MarshalSSZ ssz marshals the PayloadAttestation object.
func (a *PayloadAttestation) MarshalSSZ() ([]byte, error) {
	return ssz.MarshalSSZ(a)
}

// MarshalSSZTo ssz marshals the PayloadAttestation object to a target array.
func (a *PayloadAttestation) MarshalSSZTo(buf []byte) ([]byte, error) {
	dst := buf
	if len(a.AggregationBits) != 64 {
		return nil, ssz.ErrBytesLength
	}
	dst = append(dst, a.AggregationBits...)
	if a.Data == nil {
		a.Data = new(PayloadAttestationData)
	}
	dst, err := a.Data.MarshalSSZTo(dst)
	if err != nil {
		return nil, err
	}
	if len(a.Signature) != 96 {
		return nil, ssz.ErrBytesLength
	}
	dst = append(dst, a.Signature...)
	return dst, nil
}

// UnmarshalSSZ ssz unmarshals the PayloadAttestation object.
func (a *PayloadAttestation) UnmarshalSSZ(buf []byte) error {
	if len(buf) != payloadAttestationSize {
		return ssz.ErrSize
	}
	a.AggregationBits = bitfield.Bitvector512(append([]byte{}, buf[0:64]...))
	a.Data = new(PayloadAttestationData)
	if err := a.Data.UnmarshalSSZ(buf[64 : 64+payloadAttestationDataSize]); err != nil {
		return err
	}
	a.Signature = append([]byte{}, buf[64+payloadAttestationDataSize:]...)
	return nil
}

// SizeSSZ returns the ssz encoded size in bytes for the PayloadAttestation object.
func (a *PayloadAttestation) SizeSSZ() int {
	return payloadAttestationSize
}

// MarshalSSZ ssz marshals the PayloadAttestationMessage object.
func (m *PayloadAttestationMessage) MarshalSSZ() ([]byte, error) {
	return ssz.MarshalSSZ(m)
}

// MarshalSSZTo ssz marshals the PayloadAttestationMessage object to a target array.
func (m *PayloadAttestationMessage) MarshalSSZTo(buf []byte) ([]byte, error) {
	dst := buf
	dst = ssz.MarshalUint64(dst, uint64(m.ValidatorIndex))
	if m.Data == nil {
		m.Data = new(PayloadAttestationData)
	}
	dst, err := m.Data.MarshalSSZTo(dst)
	if err != nil {
		return nil, err
	}
	if len(m.Signature) != 96 {
		return nil, ssz.ErrBytesLength
	}
	dst = append(dst, m.Signature...)
	return dst, nil
}

// UnmarshalSSZ ssz unmarshals the PayloadAttestationMessage object.
func (m *PayloadAttestationMessage) UnmarshalSSZ(buf []byte) error {
	if len(buf) != payloadAttestationMsgSize {
		return ssz.ErrSize
	}
	m.ValidatorIndex = primitives.ValidatorIndex(ssz.UnmarshallUint64(buf[0:8]))
	m.Data = new(PayloadAttestationData)
	if err := m.Data.UnmarshalSSZ(buf[8 : 8+payloadAttestationDataSize]); err != nil {
		return err
	}
	m.Signature = append([]byte{}, buf[8+payloadAttestationDataSize:]...)
	return nil
}

// SizeSSZ returns the ssz encoded size in bytes for the PayloadAttestationMessage object.
func (m *PayloadAttestationMessage) SizeSSZ() int {
	return payloadAttestationMsgSize
}

// MarshalSSZ ssz marshals the Withdrawal object.
func (w *Withdrawal) MarshalSSZ() ([]byte, error) {
	return ssz.MarshalSSZ(w)
}

// MarshalSSZTo ssz marshals the Withdrawal object to a target array.
func (w *Withdrawal) MarshalSSZTo(buf []byte) ([]byte, error) {
	dst := buf
	dst = ssz.MarshalUint64(dst, w.Index)
	dst = ssz.MarshalUint64(dst, uint64(w.ValidatorIndex))
	if len(w.Address) != 20 {
		return nil, ssz.ErrBytesLength
	}
	dst = append(dst, w.Address...)
	dst = ssz.MarshalUint64(dst, uint64(w.Amount))
	return dst, nil
}

// UnmarshalSSZ ssz unmarshals the Withdrawal object.
func (w *Withdrawal) UnmarshalSSZ(buf []byte) error {
	if len(buf) != withdrawalSize {
		return ssz.ErrSize
	}
	w.Index = ssz.UnmarshallUint64(buf[0:8])
	w.ValidatorIndex = primitives.ValidatorIndex(ssz.UnmarshallUint64(buf[8:16]))
	w.Address = append([]byte{}, buf[16:36]...)
	w.Amount = primitives.Gwei(ssz.UnmarshallUint64(buf[36:44]))
	return nil
}

// SizeSSZ returns the ssz encoded size in bytes for the Withdrawal object.
func (w *Withdrawal) SizeSSZ() int {
	return withdrawalSize
}

// MarshalSSZ ssz marshals the ExecutionPayload object.
func (p *ExecutionPayload) MarshalSSZ() ([]byte, error) {
	return ssz.MarshalSSZ(p)
}

// MarshalSSZTo ssz marshals the ExecutionPayload object to a target array.
func (p *ExecutionPayload) MarshalSSZTo(buf []byte) ([]byte, error) {
	dst := buf
	offset := executionPayloadFixedSize

	if len(p.ParentHash) != 32 || len(p.StateRoot) != 32 || len(p.ReceiptsRoot) != 32 ||
		len(p.PrevRandao) != 32 || len(p.BlockHash) != 32 || len(p.FeeRecipient) != 20 {
		return nil, ssz.ErrBytesLength
	}
	dst = append(dst, p.ParentHash...)
	dst = append(dst, p.FeeRecipient...)
	dst = append(dst, p.StateRoot...)
	dst = append(dst, p.ReceiptsRoot...)
	dst = append(dst, p.PrevRandao...)
	dst = ssz.MarshalUint64(dst, p.BlockNumber)
	dst = ssz.MarshalUint64(dst, p.GasLimit)
	dst = ssz.MarshalUint64(dst, p.GasUsed)
	dst = ssz.MarshalUint64(dst, p.Timestamp)
	dst = append(dst, p.BlockHash...)

	dst = ssz.WriteOffset(dst, offset)
	for _, tx := range p.Transactions {
		offset += 4 + len(tx)
	}
	dst = ssz.WriteOffset(dst, offset)

	if len(p.Transactions) > maxTransactionsPerPayload {
		return nil, ssz.ErrListTooBig
	}
	txOffset := 4 * len(p.Transactions)
	for _, tx := range p.Transactions {
		dst = ssz.WriteOffset(dst, txOffset)
		txOffset += len(tx)
	}
	for _, tx := range p.Transactions {
		if len(tx) > maxBytesPerTransaction {
			return nil, ssz.ErrBytesLength
		}
		dst = append(dst, tx...)
	}

	if len(p.Withdrawals) > fieldparams.MaxWithdrawalsPerPayload {
		return nil, ssz.ErrListTooBig
	}
	var err error
	for _, w := range p.Withdrawals {
		if dst, err = w.MarshalSSZTo(dst); err != nil {
			return nil, err
		}
	}
	return dst, nil
}

// UnmarshalSSZ ssz unmarshals the ExecutionPayload object.
func (p *ExecutionPayload) UnmarshalSSZ(buf []byte) error {
	size := uint64(len(buf))
	if size < executionPayloadFixedSize {
		return ssz.ErrSize
	}
	tail := buf
	p.ParentHash = append([]byte{}, buf[0:32]...)
	p.FeeRecipient = append([]byte{}, buf[32:52]...)
	p.StateRoot = append([]byte{}, buf[52:84]...)
	p.ReceiptsRoot = append([]byte{}, buf[84:116]...)
	p.PrevRandao = append([]byte{}, buf[116:148]...)
	p.BlockNumber = ssz.UnmarshallUint64(buf[148:156])
	p.GasLimit = ssz.UnmarshallUint64(buf[156:164])
	p.GasUsed = ssz.UnmarshallUint64(buf[164:172])
	p.Timestamp = ssz.UnmarshallUint64(buf[172:180])
	p.BlockHash = append([]byte{}, buf[180:212]...)

	o10 := ssz.ReadOffset(buf[212:216])
	if o10 != executionPayloadFixedSize {
		return ssz.ErrInvalidVariableOffset
	}
	o11 := ssz.ReadOffset(buf[216:220])
	if o11 > size || o10 > o11 {
		return ssz.ErrOffset
	}

	{
		buf := tail[o10:o11]
		num, err := ssz.DecodeDynamicLength(buf, maxTransactionsPerPayload)
		if err != nil {
			return err
		}
		p.Transactions = make([][]byte, num)
		err = ssz.UnmarshalDynamic(buf, num, func(indx int, buf []byte) error {
			if len(buf) > maxBytesPerTransaction {
				return ssz.ErrBytesLength
			}
			p.Transactions[indx] = append([]byte{}, buf...)
			return nil
		})
		if err != nil {
			return err
		}
	}
	{
		buf := tail[o11:]
		num, err := ssz.DivideInt2(len(buf), withdrawalSize, fieldparams.MaxWithdrawalsPerPayload)
		if err != nil {
			return err
		}
		p.Withdrawals = make([]*Withdrawal, num)
		for i := 0; i < num; i++ {
			p.Withdrawals[i] = new(Withdrawal)
			if err = p.Withdrawals[i].UnmarshalSSZ(buf[i*withdrawalSize : (i+1)*withdrawalSize]); err != nil {
				return err
			}
		}
	}
	return nil
}

// SizeSSZ returns the ssz encoded size in bytes for the ExecutionPayload object.
func (p *ExecutionPayload) SizeSSZ() int {
	size := executionPayloadFixedSize
	for _, tx := range p.Transactions {
		size += 4 + len(tx)
	}
	size += len(p.Withdrawals) * withdrawalSize
	return size
}

// MarshalSSZ ssz marshals the ExecutionPayloadEnvelope object.
func (e *ExecutionPayloadEnvelope) MarshalSSZ() ([]byte, error) {
	return ssz.MarshalSSZ(e)
}

// MarshalSSZTo ssz marshals the ExecutionPayloadEnvelope object to a target array.
func (e *ExecutionPayloadEnvelope) MarshalSSZTo(buf []byte) ([]byte, error) {
	dst := buf
	offset := executionPayloadEnvelopeFixedSize

	if e.Payload == nil {
		e.Payload = new(ExecutionPayload)
	}
	dst = ssz.WriteOffset(dst, offset)
	offset += e.Payload.SizeSSZ()

	dst = ssz.MarshalUint64(dst, uint64(e.BuilderIndex))
	if len(e.BeaconBlockRoot) != 32 || len(e.StateRoot) != 32 {
		return nil, ssz.ErrBytesLength
	}
	dst = append(dst, e.BeaconBlockRoot...)
	dst = ssz.MarshalUint64(dst, uint64(e.Slot))
	dst = ssz.WriteOffset(dst, offset)
	dst = append(dst, e.StateRoot...)

	var err error
	if dst, err = e.Payload.MarshalSSZTo(dst); err != nil {
		return nil, err
	}
	if len(e.BlobKzgCommitments) > fieldparams.MaxBlobCommitmentsPerBlock {
		return nil, ssz.ErrListTooBig
	}
	for _, c := range e.BlobKzgCommitments {
		if len(c) != kzgCommitmentSize {
			return nil, ssz.ErrBytesLength
		}
		dst = append(dst, c...)
	}
	return dst, nil
}

// UnmarshalSSZ ssz unmarshals the ExecutionPayloadEnvelope object.
func (e *ExecutionPayloadEnvelope) UnmarshalSSZ(buf []byte) error {
	size := uint64(len(buf))
	if size < executionPayloadEnvelopeFixedSize {
		return ssz.ErrSize
	}
	tail := buf
	o0 := ssz.ReadOffset(buf[0:4])
	if o0 != executionPayloadEnvelopeFixedSize {
		return ssz.ErrInvalidVariableOffset
	}
	e.BuilderIndex = primitives.BuilderIndex(ssz.UnmarshallUint64(buf[4:12]))
	e.BeaconBlockRoot = append([]byte{}, buf[12:44]...)
	e.Slot = primitives.Slot(ssz.UnmarshallUint64(buf[44:52]))
	o4 := ssz.ReadOffset(buf[52:56])
	if o4 > size || o0 > o4 {
		return ssz.ErrOffset
	}
	e.StateRoot = append([]byte{}, buf[56:88]...)

	e.Payload = new(ExecutionPayload)
	if err := e.Payload.UnmarshalSSZ(tail[o0:o4]); err != nil {
		return err
	}

	commitments := tail[o4:]
	num, err := ssz.DivideInt2(len(commitments), kzgCommitmentSize, fieldparams.MaxBlobCommitmentsPerBlock)
	if err != nil {
		return err
	}
	e.BlobKzgCommitments = make([][]byte, num)
	for i := 0; i < num; i++ {
		e.BlobKzgCommitments[i] = append([]byte{}, commitments[i*kzgCommitmentSize:(i+1)*kzgCommitmentSize]...)
	}
	return nil
}

// SizeSSZ returns the ssz encoded size in bytes for the ExecutionPayloadEnvelope object.
func (e *ExecutionPayloadEnvelope) SizeSSZ() int {
	size := executionPayloadEnvelopeFixedSize
	if e.Payload == nil {
		e.Payload = new(ExecutionPayload)
	}
	size += e.Payload.SizeSSZ()
	size += len(e.BlobKzgCommitments) * kzgCommitmentSize
	return size
}

// MarshalSSZ ssz marshals the SignedExecutionPayloadEnvelope object.
func (s *SignedExecutionPayloadEnvelope) MarshalSSZ() ([]byte, error) {
	return ssz.MarshalSSZ(s)
}

// MarshalSSZTo ssz marshals the SignedExecutionPayloadEnvelope object to a target array.
func (s *SignedExecutionPayloadEnvelope) MarshalSSZTo(buf []byte) ([]byte, error) {
	dst := buf

	if s.Message == nil {
		s.Message = new(ExecutionPayloadEnvelope)
	}
	dst = ssz.WriteOffset(dst, signedExecutionPayloadEnvelopeFixedSize)
	if len(s.Signature) != 96 {
		return nil, ssz.ErrBytesLength
	}
	dst = append(dst, s.Signature...)

	var err error
	if dst, err = s.Message.MarshalSSZTo(dst); err != nil {
		return nil, err
	}
	return dst, nil
}

// UnmarshalSSZ ssz unmarshals the SignedExecutionPayloadEnvelope object.
func (s *SignedExecutionPayloadEnvelope) UnmarshalSSZ(buf []byte) error {
	size := uint64(len(buf))
	if size < signedExecutionPayloadEnvelopeFixedSize {
		return ssz.ErrSize
	}
	o0 := ssz.ReadOffset(buf[0:4])
	if o0 != signedExecutionPayloadEnvelopeFixedSize {
		return ssz.ErrInvalidVariableOffset
	}
	if o0 > size {
		return ssz.ErrOffset
	}
	s.Signature = append([]byte{}, buf[4:100]...)
	s.Message = new(ExecutionPayloadEnvelope)
	return s.Message.UnmarshalSSZ(buf[o0:])
}

// SizeSSZ returns the ssz encoded size in bytes for the SignedExecutionPayloadEnvelope object.
func (s *SignedExecutionPayloadEnvelope) SizeSSZ() int {
	if s.Message == nil {
		s.Message = new(ExecutionPayloadEnvelope)
	}
	return signedExecutionPayloadEnvelopeFixedSize + s.Message.SizeSSZ()
}
