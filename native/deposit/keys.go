package deposit

import "strings"

var accountRecordPrefix = []byte("deposit/account/")

func accountKey(account string) []byte {
	trimmed := strings.TrimSpace(account)
	buf := make([]byte, len(accountRecordPrefix)+len(trimmed))
	copy(buf, accountRecordPrefix)
	copy(buf[len(accountRecordPrefix):], trimmed)
	return buf
}
