// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package rendezvous

import (
	"net"

	"golang.org/x/sys/unix"
)

// peerPID returns the connecting process's PID from SO_PEERCRED.
func peerPID(conn *net.UnixConn) int32 {
	raw, err := conn.SyscallConn()
	if err != nil {
		return 0
	}
	var pid int32
	raw.Control(func(fd uintptr) {
		credentials, err := unix.GetsockoptUcred(int(fd), unix.SOL_SOCKET, unix.SO_PEERCRED)
		if err == nil {
			pid = credentials.Pid
		}
	})
	return pid
}
