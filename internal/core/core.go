package core

import (
	"cmp"
	"errors"
	"net"
	"os"
	"strconv"
)

// https://stackoverflow.com/a/12518877
func FileExists(filePath string) (bool, error) {
	if _, err := os.Stat(filePath); err == nil {
		return true, nil
	} else if errors.Is(err, os.ErrNotExist) {
		return false, nil
	} else {
		return false, err
	}
}

// FlagChannel does a non blocking send on a wake up channel.
func FlagChannel(c chan<- struct{}) {
	select {
	case c <- struct{}{}:
	default:
	}
}

func Clamp[T cmp.Ordered](v, lo, hi T) T {
	return min(max(v, lo), hi)
}

func Address(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}
