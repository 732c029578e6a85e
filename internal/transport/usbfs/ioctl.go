//go:build linux

package usbfs

import (
	"syscall"
	"unsafe"
)

// bulkTransfer must match the kernel's struct usbdevfs_bulktransfer.
type bulkTransfer struct {
	endpoint uint32
	length   uint32
	timeout  uint32
	data     uintptr
}

// usbfsIoctl must match the kernel's struct usbdevfs_ioctl; it routes
// driver-level requests such as kernel-driver detach at an interface.
type usbfsIoctl struct {
	ifno int32
	code int32
	data uintptr
}

// ioctl number encoding (asm-generic layout):
//
//	bits 0-7   command number
//	bits 8-15  ioctl type
//	bits 16-29 argument size
//	bits 30-31 direction
const (
	iocWrite = 1
	iocRead  = 2

	iocNRShift   = 0
	iocTypeShift = 8
	iocSizeShift = 16
	iocDirShift  = 30
)

func ioc(dir, typ, nr, size uintptr) uintptr {
	return (dir << iocDirShift) | (typ << iocTypeShift) | (nr << iocNRShift) | (size << iocSizeShift)
}

func ior(typ, nr, size uintptr) uintptr  { return ioc(iocRead, typ, nr, size) }
func iowr(typ, nr, size uintptr) uintptr { return ioc(iocRead|iocWrite, typ, nr, size) }
func io(typ, nr uintptr) uintptr         { return ioc(0, typ, nr, 0) }

// usbdevfs ioctl type character.
const usbdevfsType = 'U'

var (
	ioctlBulk             = iowr(usbdevfsType, 2, unsafe.Sizeof(bulkTransfer{}))
	ioctlClaimInterface   = ior(usbdevfsType, 15, unsafe.Sizeof(int32(0)))
	ioctlReleaseInterface = ior(usbdevfsType, 16, unsafe.Sizeof(int32(0)))
	ioctlIoctl            = iowr(usbdevfsType, 18, unsafe.Sizeof(usbfsIoctl{}))
	ioctlDisconnect       = io(usbdevfsType, 22)
)

func ioctlRaw(fd int, req uintptr, arg uintptr) error {
	_, _, errno := syscall.Syscall(syscall.SYS_IOCTL, uintptr(fd), req, arg)
	if errno != 0 {
		return errno
	}
	return nil
}

func ioctlRetval(fd int, req uintptr, arg uintptr) (int, error) {
	r, _, errno := syscall.Syscall(syscall.SYS_IOCTL, uintptr(fd), req, arg)
	if errno != 0 {
		return int(r), errno
	}
	return int(r), nil
}

// doBulkTransfer performs one synchronous bulk/interrupt transfer and
// returns the byte count actually moved.
func doBulkTransfer(fd int, endpoint uint8, data []byte, timeoutMS uint32) (int, error) {
	bulk := bulkTransfer{
		endpoint: uint32(endpoint),
		length:   uint32(len(data)),
		timeout:  timeoutMS,
	}
	if len(data) > 0 {
		bulk.data = uintptr(unsafe.Pointer(&data[0]))
	}
	return ioctlRetval(fd, ioctlBulk, uintptr(unsafe.Pointer(&bulk)))
}

func claimInterface(fd int, iface int32) error {
	return ioctlRaw(fd, ioctlClaimInterface, uintptr(unsafe.Pointer(&iface)))
}

func releaseInterface(fd int, iface int32) error {
	return ioctlRaw(fd, ioctlReleaseInterface, uintptr(unsafe.Pointer(&iface)))
}

// detachKernelDriver asks usbfs to disconnect whatever kernel driver
// (usbhid, typically) currently owns the interface.
func detachKernelDriver(fd int, iface int32) error {
	req := usbfsIoctl{ifno: iface, code: int32(ioctlDisconnect)}
	return ioctlRaw(fd, ioctlIoctl, uintptr(unsafe.Pointer(&req)))
}
