// Package pb holds the wire structs of events.proto.
package pb

import (
	"github.com/golang/protobuf/proto"
)

// Typed wraps an encoded message with its type id.
type Typed struct {
	TypeId               uint32   `protobuf:"varint,1,opt,name=type_id,json=typeId,proto3" json:"type_id,omitempty"`
	Message              []byte   `protobuf:"bytes,2,opt,name=message,proto3" json:"message,omitempty"`
	XXX_NoUnkeyedLiteral struct{} `json:"-"`
	XXX_unrecognized     []byte   `json:"-"`
	XXX_sizecache        int32    `json:"-"`
}

func (m *Typed) Reset()         { *m = Typed{} }
func (m *Typed) String() string { return proto.CompactTextString(m) }
func (*Typed) ProtoMessage()    {}

// SessionState reports the sync engine state of one radio.
type SessionState struct {
	RadioId              string   `protobuf:"bytes,1,opt,name=radio_id,json=radioId,proto3" json:"radio_id,omitempty"`
	State                int32    `protobuf:"varint,2,opt,name=state,proto3" json:"state,omitempty"`
	Firmware             string   `protobuf:"bytes,3,opt,name=firmware,proto3" json:"firmware,omitempty"`
	Port                 string   `protobuf:"bytes,4,opt,name=port,proto3" json:"port,omitempty"`
	XXX_NoUnkeyedLiteral struct{} `json:"-"`
	XXX_unrecognized     []byte   `json:"-"`
	XXX_sizecache        int32    `json:"-"`
}

func (m *SessionState) Reset()         { *m = SessionState{} }
func (m *SessionState) String() string { return proto.CompactTextString(m) }
func (*SessionState) ProtoMessage()    {}

// SyncProgress is sent after each transferred block.
type SyncProgress struct {
	Op                   string   `protobuf:"bytes,1,opt,name=op,proto3" json:"op,omitempty"`
	Offset               uint32   `protobuf:"varint,2,opt,name=offset,proto3" json:"offset,omitempty"`
	Done                 uint32   `protobuf:"varint,3,opt,name=done,proto3" json:"done,omitempty"`
	Total                uint32   `protobuf:"varint,4,opt,name=total,proto3" json:"total,omitempty"`
	Retries              uint32   `protobuf:"varint,5,opt,name=retries,proto3" json:"retries,omitempty"`
	XXX_NoUnkeyedLiteral struct{} `json:"-"`
	XXX_unrecognized     []byte   `json:"-"`
	XXX_sizecache        int32    `json:"-"`
}

func (m *SyncProgress) Reset()         { *m = SyncProgress{} }
func (m *SyncProgress) String() string { return proto.CompactTextString(m) }
func (*SyncProgress) ProtoMessage()    {}

// TransferResult summarizes a finished download or upload.
type TransferResult struct {
	Op                   string   `protobuf:"bytes,1,opt,name=op,proto3" json:"op,omitempty"`
	Blocks               uint32   `protobuf:"varint,2,opt,name=blocks,proto3" json:"blocks,omitempty"`
	Bytes                uint32   `protobuf:"varint,3,opt,name=bytes,proto3" json:"bytes,omitempty"`
	Retries              uint32   `protobuf:"varint,4,opt,name=retries,proto3" json:"retries,omitempty"`
	ElapsedMs            int64    `protobuf:"varint,5,opt,name=elapsed_ms,json=elapsedMs,proto3" json:"elapsed_ms,omitempty"`
	Error                string   `protobuf:"bytes,6,opt,name=error,proto3" json:"error,omitempty"`
	XXX_NoUnkeyedLiteral struct{} `json:"-"`
	XXX_unrecognized     []byte   `json:"-"`
	XXX_sizecache        int32    `json:"-"`
}

func (m *TransferResult) Reset()         { *m = TransferResult{} }
func (m *TransferResult) String() string { return proto.CompactTextString(m) }
func (*TransferResult) ProtoMessage()    {}

func init() {
	proto.RegisterType((*Typed)(nil), "uvk5.telemetry.v1.Typed")
	proto.RegisterType((*SessionState)(nil), "uvk5.telemetry.v1.SessionState")
	proto.RegisterType((*SyncProgress)(nil), "uvk5.telemetry.v1.SyncProgress")
	proto.RegisterType((*TransferResult)(nil), "uvk5.telemetry.v1.TransferResult")
}
