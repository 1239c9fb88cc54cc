//go:build unix

package sock

import "golang.org/x/sys/unix"

// ReadFull issues repeated reads until len(buf) bytes have been delivered.
// EOF short-circuits the loop: the partial total actually read (possibly
// zero) is returned with a nil error. A hard error returns the total read
// so far together with the error. Signal interruption is not retried;
// that is the caller's I/O discipline.
//
// ReadFull is intended for blocking sockets. On a non-blocking socket it
// may return short counts with EAGAIN; handling that is the caller's
// responsibility.
func ReadFull(fd int, buf []byte) (int, error) {
	total := 0
	for total != len(buf) {
		n, err := unix.Read(fd, buf[total:])
		if err != nil {
			return total, err
		}
		if n == 0 {
			return total, nil
		}
		total += n
	}
	return total, nil
}

// WriteFull issues repeated writes until len(buf) bytes have been
// accepted by the kernel. A zero-byte write is treated as a terminal
// condition and the partial total is returned with a nil error; a hard
// error returns the total written so far together with the error.
func WriteFull(fd int, buf []byte) (int, error) {
	total := 0
	for total != len(buf) {
		n, err := unix.Write(fd, buf[total:])
		if err != nil {
			return total, err
		}
		if n == 0 {
			return total, nil
		}
		total += n
	}
	return total, nil
}
