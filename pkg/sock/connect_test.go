//go:build unix

package sock

import (
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/shirou/gopsutil/v3/process"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang.org/x/sys/unix"
)

// startLoopbackListener opens a listener on 127.0.0.1 with an OS-assigned
// port and returns the descriptor and the port.
func startLoopbackListener(t *testing.T) (int, int) {
	t.Helper()
	fds, err := TCPServer("0", "127.0.0.1", 1)
	require.NoError(t, err)
	require.Len(t, fds, 1)
	t.Cleanup(func() { _ = Close(fds[0]) })

	local, err := LocalAddr(fds[0])
	require.NoError(t, err)
	require.NotZero(t, local.Port)
	return fds[0], local.Port
}

// closedLoopbackPort reserves an ephemeral port and releases it, yielding
// a port with nothing listening.
func closedLoopbackPort(t *testing.T) int {
	t.Helper()
	fds, err := TCPServer("0", "127.0.0.1", 1)
	require.NoError(t, err)
	local, err := LocalAddr(fds[0])
	require.NoError(t, err)
	require.NoError(t, Close(fds[0]))
	return local.Port
}

func TestTCPConnectBlocking(t *testing.T) {
	lfd, port := startLoopbackListener(t)

	fd, raddr, err := TCPConnect("127.0.0.1", strconv.Itoa(port))
	require.NoError(t, err)
	defer func() { _ = Close(fd) }()

	assert.GreaterOrEqual(t, fd, 0)
	require.NotNil(t, raddr)
	assert.Equal(t, unix.AF_INET, raddr.Family)
	assert.Equal(t, "127.0.0.1", raddr.String())
	assert.Equal(t, port, raddr.Port)

	afd, peer, err := TCPAccept(lfd)
	require.NoError(t, err)
	defer func() { _ = Close(afd) }()
	assert.Equal(t, "127.0.0.1", peer.String())
}

func TestTCPConnectNonBlock(t *testing.T) {
	lfd, port := startLoopbackListener(t)

	fd, raddr, err := TCPConnectNonBlock("127.0.0.1", strconv.Itoa(port))
	require.NoError(t, err)
	defer func() { _ = Close(fd) }()

	require.NotNil(t, raddr)
	assert.Equal(t, unix.AF_INET, raddr.Family)
	assert.Equal(t, "127.0.0.1", raddr.String())

	// the descriptor must be in the requested mode
	flags, err := unix.FcntlInt(uintptr(fd), unix.F_GETFL, 0)
	require.NoError(t, err)
	assert.NotZero(t, flags&unix.O_NONBLOCK)

	// connected or connection-in-progress: wait for writability, then the
	// pending error must be clear
	pfd := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLOUT}}
	n, err := unix.Poll(pfd, 5000)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	soErr, err := unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_ERROR)
	require.NoError(t, err)
	assert.Equal(t, 0, soErr)

	afd, _, err := TCPAccept(lfd)
	require.NoError(t, err)
	_ = Close(afd)
}

func TestTCPConnectNonBlockAddr(t *testing.T) {
	lfd, _ := startLoopbackListener(t)
	target, err := LocalAddr(lfd)
	require.NoError(t, err)

	fd, raddr, err := TCPConnectNonBlockAddr(target)
	require.NoError(t, err)
	defer func() { _ = Close(fd) }()

	assert.Equal(t, target.Port, raddr.Port)
	assert.Equal(t, "127.0.0.1", raddr.String())

	afd, _, err := TCPAccept(lfd)
	require.NoError(t, err)
	_ = Close(afd)
}

func TestTCPConnectRefused(t *testing.T) {
	port := closedLoopbackPort(t)

	fd, raddr, err := TCPConnect("127.0.0.1", strconv.Itoa(port))
	require.Error(t, err)
	assert.Equal(t, -1, fd)
	assert.Nil(t, raddr)
	assert.True(t, strings.HasPrefix(err.Error(), "connect: "), err.Error())
}

func TestTCPConnectBadHost(t *testing.T) {
	_, _, err := TCPConnect("does.not.exist.invalid", "80")
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "can't resolve does.not.exist.invalid: "), err.Error())
}

// A failed connect must not leak a descriptor.
func TestTCPConnectNoDescriptorLeak(t *testing.T) {
	port := closedLoopbackPort(t)

	proc, err := process.NewProcess(int32(os.Getpid()))
	require.NoError(t, err)

	before, err := proc.NumFDs()
	require.NoError(t, err)

	for i := 0; i < 8; i++ {
		_, _, cerr := TCPConnect("127.0.0.1", strconv.Itoa(port))
		require.Error(t, cerr)
	}

	after, err := proc.NumFDs()
	require.NoError(t, err)
	assert.Equal(t, before, after, "open descriptor count changed on the error path")
}

func TestTCPServerNoDescriptorLeakOnFailure(t *testing.T) {
	_, port := startLoopbackListener(t)

	proc, err := process.NewProcess(int32(os.Getpid()))
	require.NoError(t, err)

	before, err := proc.NumFDs()
	require.NoError(t, err)

	for i := 0; i < 8; i++ {
		_, serr := TCPServer(strconv.Itoa(port), "127.0.0.1", 4)
		require.Error(t, serr)
	}

	after, err := proc.NumFDs()
	require.NoError(t, err)
	assert.Equal(t, before, after, "open descriptor count changed on the error path")
}

func TestTCPConnectRetryUntilListenerReady(t *testing.T) {
	port := closedLoopbackPort(t)

	go func() {
		time.Sleep(50 * time.Millisecond)
		fds, err := TCPServer(strconv.Itoa(port), "127.0.0.1", 1)
		if err != nil {
			return
		}
		fd, _, err := TCPAccept(fds[0])
		if err == nil {
			_ = Close(fd)
		}
		_ = Close(fds[0])
	}()

	var fd int
	op := func() error {
		var err error
		fd, _, err = TCPConnect("127.0.0.1", strconv.Itoa(port))
		return err
	}
	err := backoff.Retry(op, backoff.WithMaxRetries(backoff.NewConstantBackOff(20*time.Millisecond), 100))
	require.NoError(t, err)
	_ = Close(fd)
}
