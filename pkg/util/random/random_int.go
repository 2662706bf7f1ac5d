package random

import (
	"crypto/rand"
	"math/big"
	"strconv"
)

// GetRandomInt 生成指定位数的安全随机数字（用于短信验证码）
func GetRandomInt(length int) int {
	if length <= 0 {
		length = 1
	}
	// 计算范围：例如 length=6 时，范围是 100000-999999
	min := int64(1)
	for i := 1; i < length; i++ {
		min *= 10
	}
	max := min * 10

	rangeSize := big.NewInt(max - min)
	n, err := rand.Int(rand.Reader, rangeSize)
	if err != nil {
		return int(min) // fallback
	}
	return int(n.Int64() + min)
}

// GetVerificationCode 生成指定位数的数字验证码字符串
func GetVerificationCode(length int) string {
	return strconv.Itoa(GetRandomInt(length))
}
