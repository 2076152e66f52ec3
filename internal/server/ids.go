package server

import (
	"hash/fnv"
	"strconv"
)

// The store keys chats, users and log entries by opaque integers, while
// Feishu hands out string ids. hashID maps a platform id to a stable
// int64 (FNV-1a). updateKey folds the message id and its create time
// together so a platform redelivery of the same event reproduces the same
// update id and lands on the log's conflict path instead of a duplicate
// row.
func hashID(key string) int64 {
	h := fnv.New64a()
	h.Write([]byte(key))
	return int64(h.Sum64())
}

func updateKey(msgID string, createTime int64) string {
	return msgID + "|" + strconv.FormatInt(createTime, 10)
}
