package rediskey

import "fmt"

const (
	SequencePrefix = "seq"
	ReceiptPrefix  = "MAT"
)

func NamespaceKey(namespace, key string) string {
	return fmt.Sprintf("%s:%s", namespace, key)
}

// BuildReceiptSequenceKey returns "seq:MAT:{yymmdd}"
func BuildReceiptSequenceKey(day string) string {
	return NamespaceKey(SequencePrefix, NamespaceKey(ReceiptPrefix, day))
}
