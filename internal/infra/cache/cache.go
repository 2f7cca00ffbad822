// Package cache は注文の読み取りキャッシュ。REDIS_ADDR が空なら使わない。
package cache

import "errors"

var ErrCacheMiss = errors.New("cache miss")
