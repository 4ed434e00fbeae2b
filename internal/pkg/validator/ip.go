package validator

import (
	"net/netip"
	"strings"
)

// UnknownClient 无法识别客户端地址时使用的占位 key
const UnknownClient = "unknown"

// NormalizeIP 规范化 IP 地址
// 移除 IPv6 zone (fe80::1%eth0 -> fe80::1), IPv4-mapped 地址还原为 IPv4,
// IPv6 统一为压缩小写形式。非法地址返回空串
func NormalizeIP(ip string) string {
	ip = strings.TrimSpace(ip)
	if i := strings.IndexByte(ip, '%'); i != -1 {
		ip = ip[:i]
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return ""
	}
	return addr.Unmap().String()
}

// IsValidIP 验证 IP 地址格式（支持 IPv4 和 IPv6）
func IsValidIP(ip string) bool {
	return NormalizeIP(ip) != ""
}

// ClientKey 返回用于限流计数的客户端标识
// 同一客户端的不同写法 (::ffff:10.0.0.1 与 10.0.0.1) 落到同一个 key
func ClientKey(ip string) string {
	if n := NormalizeIP(ip); n != "" {
		return n
	}
	return UnknownClient
}
