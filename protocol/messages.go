package protocol

import (
	"bytes"

	"golang.org/x/crypto/cryptobyte"
)

// HpkeConfigID identifies one HPKE config of an aggregator.
type HpkeConfigID uint8

// HPKE algorithm identifiers, as registered with IANA.
type (
	HpkeKemID  uint16
	HpkeKdfID  uint16
	HpkeAeadID uint16
)

// HpkeConfig is an aggregator's public encryption configuration.
type HpkeConfig struct {
	ID        HpkeConfigID
	KEM       HpkeKemID
	KDF       HpkeKdfID
	AEAD      HpkeAeadID
	PublicKey []byte
}

// Clone returns a deep copy of c.
func (c HpkeConfig) Clone() HpkeConfig {
	clone := c
	clone.PublicKey = bytes.Clone(c.PublicKey)
	return clone
}

func (c HpkeConfig) Marshal(b *cryptobyte.Builder) {
	b.AddUint8(uint8(c.ID))
	b.AddUint16(uint16(c.KEM))
	b.AddUint16(uint16(c.KDF))
	b.AddUint16(uint16(c.AEAD))
	b.AddUint16LengthPrefixed(func(b *cryptobyte.Builder) {
		b.AddBytes(c.PublicKey)
	})
}

func (c *HpkeConfig) Unmarshal(s *cryptobyte.String) bool {
	var publicKey cryptobyte.String
	if !s.ReadUint8((*uint8)(&c.ID)) ||
		!s.ReadUint16((*uint16)(&c.KEM)) ||
		!s.ReadUint16((*uint16)(&c.KDF)) ||
		!s.ReadUint16((*uint16)(&c.AEAD)) ||
		!s.ReadUint16LengthPrefixed(&publicKey) || publicKey.Empty() {
		return false
	}
	c.PublicKey = copyString(publicKey)
	return true
}

// HpkeConfigList is the ordered list of configs an aggregator offers.
type HpkeConfigList []HpkeConfig

func (l HpkeConfigList) Marshal(b *cryptobyte.Builder) {
	b.AddUint16LengthPrefixed(func(b *cryptobyte.Builder) {
		for _, c := range l {
			c.Marshal(b)
		}
	})
}

func (l *HpkeConfigList) Unmarshal(s *cryptobyte.String) bool {
	var configs cryptobyte.String
	if !s.ReadUint16LengthPrefixed(&configs) {
		return false
	}
	list := HpkeConfigList{}
	for !configs.Empty() {
		var c HpkeConfig
		if !c.Unmarshal(&configs) {
			return false
		}
		list = append(list, c)
	}
	*l = list
	return true
}

// ReportMetadata is the public metadata of a report.
type ReportMetadata struct {
	ReportID ReportID
	Time     Time
}

func (m ReportMetadata) Marshal(b *cryptobyte.Builder) {
	m.ReportID.Marshal(b)
	m.Time.Marshal(b)
}

func (m *ReportMetadata) Unmarshal(s *cryptobyte.String) bool {
	return m.ReportID.Unmarshal(s) && m.Time.Unmarshal(s)
}

// HpkeCiphertext is an input share sealed toward one aggregator.
type HpkeCiphertext struct {
	ConfigID        HpkeConfigID
	EncapsulatedKey []byte
	Payload         []byte
}

func (c HpkeCiphertext) Marshal(b *cryptobyte.Builder) {
	b.AddUint8(uint8(c.ConfigID))
	b.AddUint16LengthPrefixed(func(b *cryptobyte.Builder) {
		b.AddBytes(c.EncapsulatedKey)
	})
	b.AddUint32LengthPrefixed(func(b *cryptobyte.Builder) {
		b.AddBytes(c.Payload)
	})
}

func (c *HpkeCiphertext) Unmarshal(s *cryptobyte.String) bool {
	var enc, payload cryptobyte.String
	if !s.ReadUint8((*uint8)(&c.ConfigID)) ||
		!s.ReadUint16LengthPrefixed(&enc) ||
		!readUint32LengthPrefixed(s, &payload) {
		return false
	}
	c.EncapsulatedKey = copyString(enc)
	c.Payload = copyString(payload)
	return true
}

// ExtensionType identifies a report extension.
type ExtensionType uint16

// Extension carries optional report data to the aggregators.
type Extension struct {
	Type ExtensionType
	Data []byte
}

func (e Extension) Marshal(b *cryptobyte.Builder) {
	b.AddUint16(uint16(e.Type))
	b.AddUint16LengthPrefixed(func(b *cryptobyte.Builder) {
		b.AddBytes(e.Data)
	})
}

func (e *Extension) Unmarshal(s *cryptobyte.String) bool {
	var data cryptobyte.String
	if !s.ReadUint16((*uint16)(&e.Type)) || !s.ReadUint16LengthPrefixed(&data) {
		return false
	}
	e.Data = copyString(data)
	return true
}

// PlaintextInputShare is the plaintext sealed toward each aggregator.
type PlaintextInputShare struct {
	Extensions []Extension
	Payload    []byte // encoded VDAF input share
}

func (p PlaintextInputShare) Marshal(b *cryptobyte.Builder) {
	b.AddUint16LengthPrefixed(func(b *cryptobyte.Builder) {
		for _, e := range p.Extensions {
			e.Marshal(b)
		}
	})
	b.AddUint32LengthPrefixed(func(b *cryptobyte.Builder) {
		b.AddBytes(p.Payload)
	})
}

func (p *PlaintextInputShare) Unmarshal(s *cryptobyte.String) bool {
	var extensions, payload cryptobyte.String
	if !s.ReadUint16LengthPrefixed(&extensions) {
		return false
	}
	p.Extensions = []Extension{}
	for !extensions.Empty() {
		var e Extension
		if !e.Unmarshal(&extensions) {
			return false
		}
		p.Extensions = append(p.Extensions, e)
	}
	if !readUint32LengthPrefixed(s, &payload) {
		return false
	}
	p.Payload = copyString(payload)
	return true
}

// InputShareAad is the associated data that binds a sealed input share to one
// task, one report, and one public share.
type InputShareAad struct {
	TaskID      TaskID
	Metadata    ReportMetadata
	PublicShare []byte
}

func (a InputShareAad) Marshal(b *cryptobyte.Builder) {
	a.TaskID.Marshal(b)
	a.Metadata.Marshal(b)
	b.AddUint32LengthPrefixed(func(b *cryptobyte.Builder) {
		b.AddBytes(a.PublicShare)
	})
}

func (a *InputShareAad) Unmarshal(s *cryptobyte.String) bool {
	var publicShare cryptobyte.String
	if !a.TaskID.Unmarshal(s) || !a.Metadata.Unmarshal(s) || !readUint32LengthPrefixed(s, &publicShare) {
		return false
	}
	a.PublicShare = copyString(publicShare)
	return true
}

// Report is the complete client upload: metadata, the public share in the
// clear, and one ciphertext per aggregator, leader first.
type Report struct {
	Metadata                  ReportMetadata
	PublicShare               []byte
	LeaderEncryptedInputShare HpkeCiphertext
	HelperEncryptedInputShare HpkeCiphertext
}

func (r Report) Marshal(b *cryptobyte.Builder) {
	r.Metadata.Marshal(b)
	b.AddUint32LengthPrefixed(func(b *cryptobyte.Builder) {
		b.AddBytes(r.PublicShare)
	})
	r.LeaderEncryptedInputShare.Marshal(b)
	r.HelperEncryptedInputShare.Marshal(b)
}

func (r *Report) Unmarshal(s *cryptobyte.String) bool {
	var publicShare cryptobyte.String
	if !r.Metadata.Unmarshal(s) ||
		!readUint32LengthPrefixed(s, &publicShare) ||
		!r.LeaderEncryptedInputShare.Unmarshal(s) ||
		!r.HelperEncryptedInputShare.Unmarshal(s) {
		return false
	}
	r.PublicShare = copyString(publicShare)
	return true
}
