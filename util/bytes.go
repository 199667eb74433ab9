package util

import (
	"encoding/binary"
	"unsafe"
)

func BytesToStr(b []byte) string {
	return unsafe.String(unsafe.SliceData(b), len(b))
}

func StrToBytes(s string) []byte {
	return unsafe.Slice(unsafe.StringData(s), len(s))
}

func Int64ToBytes(v int64) []byte {
	bytes := make([]byte, 8)
	binary.BigEndian.PutUint64(bytes, uint64(v))
	return bytes
}

func BytesToInt64(bytes []byte) int64 {
	return int64(binary.BigEndian.Uint64(bytes))
}
