package sid

import (
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/15mga/kite/util"
	"github.com/bwmarrin/snowflake"
)

const (
	Snowflake = "snowflake"
)

var (
	_NameToFac = make(map[string]util.ToInt64)
)

func BindIdFac(name string, to util.ToInt64) {
	_NameToFac[name] = to
}

func GetIdWithName(name string) int64 {
	fac, ok := _NameToFac[name]
	if !ok {
		panic("not exist " + name)
	}
	return fac()
}

func SetNodeId(id int64) {
	node, err := snowflake.NewNode(id)
	if err != nil {
		panic(fmt.Sprintf("generate node failed id:%d", id))
	}
	BindIdFac(Snowflake, func() int64 {
		return node.Generate().Int64()
	})
}

func GetId() int64 {
	return GetIdWithName(Snowflake)
}

func GetStrId() string {
	return NewId().String()
}

// Id 雪花 id,可作为实体标识
type Id int64

func NewId() Id {
	return Id(GetId())
}

func (id Id) Int64() int64 {
	return int64(id)
}

func (id Id) String() string {
	return hex.EncodeToString(util.Int64ToBytes(int64(id)))
}

func ParseId(str string) (Id, *util.Err) {
	bytes, e := hex.DecodeString(str)
	if e != nil || len(bytes) != 8 {
		return 0, util.NewErr(util.EcParseErr, util.M{
			"id": str,
		})
	}
	return Id(util.BytesToInt64(bytes)), nil
}

// Base36 短格式,用于展示
func (id Id) Base36() string {
	return strconv.FormatInt(int64(id), 36)
}
