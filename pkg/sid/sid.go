package sid

import (
	"hash/fnv"
	"os"

	"github.com/sony/sonyflake"
)

type Sid struct {
	sf *sonyflake.Sonyflake
}

func NewSid() *Sid {
	sf := sonyflake.NewSonyflake(sonyflake.Settings{
		MachineID: hostnameMachineID,
	})
	if sf == nil {
		panic("sonyflake not created")
	}
	return &Sid{sf}
}

// hostnameMachineID 容器环境下不一定有私有 IP，这里用主机名散列出 16 位机器号
func hostnameMachineID() (uint16, error) {
	host, err := os.Hostname()
	if err != nil {
		return uint16(os.Getpid()), nil
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(host))
	return uint16(h.Sum32()), nil
}

func (s Sid) GenString() (string, error) {
	id, err := s.sf.NextID()
	if err != nil {
		return "", err
	}
	return IntToBase62(id), nil
}

func (s Sid) GenUint64() (uint64, error) {
	return s.sf.NextID()
}
