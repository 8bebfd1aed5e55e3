package core

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for stored records. Field order is the storage format:
// append new fields at the end only.
var (
	IDMUS      = idMUS{}
	UserMUS    = userMUS{}
	SessionMUS = sessionMUS{}
)

type idMUS struct{}

func (s idMUS) Marshal(v ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (s idMUS) Unmarshal(bs []byte) (v ID, n int, err error) {
	raw, n, err := varint.Uint64.Unmarshal(bs)
	return ID(raw), n, err
}

func (s idMUS) Size(v ID) (size int) {
	return varint.Uint64.Size(uint64(v))
}

// Timestamps are stored as Unix microseconds.
func marshalTime(t time.Time, bs []byte) (n int) {
	return varint.Int64.Marshal(t.UnixMicro(), bs)
}

func unmarshalTime(bs []byte) (t time.Time, n int, err error) {
	micros, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return
	}
	return time.UnixMicro(micros).UTC(), n, nil
}

func sizeTime(t time.Time) int {
	return varint.Int64.Size(t.UnixMicro())
}

type userMUS struct{}

// strings lists the string fields in storage order.
func (s userMUS) strings(v User) [13]string {
	return [13]string{
		v.FullName, v.Username, v.Email, v.Company, v.Country, v.Contact,
		v.Billing, string(v.Role), v.CurrentPlan, string(v.Approval), v.Status,
		v.Avatar, v.PasswordHash,
	}
}

func (s userMUS) Marshal(v User, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	for _, str := range s.strings(v) {
		n += ord.String.Marshal(str, bs[n:])
	}
	n += marshalTime(v.InsertedAt, bs[n:])
	n += marshalTime(v.UpdatedAt, bs[n:])
	return
}

func (s userMUS) Unmarshal(bs []byte) (v User, n int, err error) {
	var n1 int
	v.Id, n1, err = IDMUS.Unmarshal(bs)
	n += n1
	if err != nil {
		return
	}
	var strs [13]string
	for i := range strs {
		strs[i], n1, err = ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	v.FullName, v.Username, v.Email = strs[0], strs[1], strs[2]
	v.Company, v.Country, v.Contact, v.Billing = strs[3], strs[4], strs[5], strs[6]
	v.Role, v.CurrentPlan, v.Approval = Role(strs[7]), strs[8], Approval(strs[9])
	v.Status, v.Avatar, v.PasswordHash = strs[10], strs[11], strs[12]
	v.InsertedAt, n1, err = unmarshalTime(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.UpdatedAt, n1, err = unmarshalTime(bs[n:])
	n += n1
	return
}

func (s userMUS) Size(v User) (size int) {
	size = IDMUS.Size(v.Id)
	for _, str := range s.strings(v) {
		size += ord.String.Size(str)
	}
	return size + sizeTime(v.InsertedAt) + sizeTime(v.UpdatedAt)
}

type sessionMUS struct{}

func (s sessionMUS) Marshal(v Session, bs []byte) (n int) {
	n = ord.String.Marshal(v.TokenDigest, bs)
	n += IDMUS.Marshal(v.UserId, bs[n:])
	n += marshalTime(v.CreatedAt, bs[n:])
	n += marshalTime(v.ExpiresAt, bs[n:])
	return
}

func (s sessionMUS) Unmarshal(bs []byte) (v Session, n int, err error) {
	var n1 int
	v.TokenDigest, n1, err = ord.String.Unmarshal(bs)
	n += n1
	if err != nil {
		return
	}
	v.UserId, n1, err = IDMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.CreatedAt, n1, err = unmarshalTime(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.ExpiresAt, n1, err = unmarshalTime(bs[n:])
	n += n1
	return
}

func (s sessionMUS) Size(v Session) (size int) {
	return ord.String.Size(v.TokenDigest) + IDMUS.Size(v.UserId) +
		sizeTime(v.CreatedAt) + sizeTime(v.ExpiresAt)
}
