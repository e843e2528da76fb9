//go:build darwin && cgo

package sources

/*
#include <mach/mach.h>
#include <mach/processor_info.h>
#include <mach/mach_host.h>
*/
import "C"

import (
	"time"
	"unsafe"

	"github.com/pkg/errors"

	"github.com/danpilch/cpuusage/pkg/cpuusage"
)

func init() {
	defaultRegistry.Register("mach", cpuusage.ScopeSystem, 20, func() (cpuusage.Source, error) {
		return NewMach(), nil
	})
}

// CPUTicks holds CPU tick counts summed over all processors.
type CPUTicks struct {
	User   uint64
	System uint64
	Idle   uint64
	Nice   uint64
}

// Busy returns busy ticks.
func (t CPUTicks) Busy() uint64 {
	return t.User + t.System + t.Nice
}

// Mach reads system-wide busy ticks via host_processor_info.
type Mach struct {
	ticks uint64
}

// NewMach creates a Mach host source.
func NewMach() *Mach {
	return &Mach{ticks: clockTicks()}
}

func (m *Mach) Name() string          { return "mach" }
func (m *Mach) Scope() cpuusage.Scope { return cpuusage.ScopeSystem }

func (m *Mach) Read() (cpuusage.Reading, error) {
	t, err := getCPUTicks()
	if err != nil {
		return cpuusage.Reading{}, err
	}
	return cpuusage.Reading{
		Busy:           t.Busy(),
		TicksPerSecond: m.ticks,
	}, nil
}

// Uptime returns the time since boot.
func (m *Mach) Uptime() (time.Duration, error) {
	return hostUptime()
}

func getCPUTicks() (CPUTicks, error) {
	var (
		numCPU     C.natural_t
		cpuInfo    *C.integer_t
		numCPUInfo C.mach_msg_type_number_t
	)

	host := C.mach_host_self()
	ret := C.host_processor_info(host, C.PROCESSOR_CPU_LOAD_INFO, &numCPU, (*C.processor_info_array_t)(unsafe.Pointer(&cpuInfo)), &numCPUInfo)
	if ret != C.KERN_SUCCESS {
		return CPUTicks{}, errors.Errorf("host_processor_info failed: %d", ret)
	}
	defer C.vm_deallocate(C.mach_task_self_, C.vm_address_t(uintptr(unsafe.Pointer(cpuInfo))), C.vm_size_t(numCPUInfo)*C.vm_size_t(unsafe.Sizeof(C.integer_t(0))))

	var ticks CPUTicks
	cpuLoadInfo := (*[1 << 20]C.integer_t)(unsafe.Pointer(cpuInfo))

	for i := C.natural_t(0); i < numCPU; i++ {
		offset := i * C.CPU_STATE_MAX
		ticks.User += uint64(cpuLoadInfo[offset+C.CPU_STATE_USER])
		ticks.System += uint64(cpuLoadInfo[offset+C.CPU_STATE_SYSTEM])
		ticks.Idle += uint64(cpuLoadInfo[offset+C.CPU_STATE_IDLE])
		ticks.Nice += uint64(cpuLoadInfo[offset+C.CPU_STATE_NICE])
	}

	return ticks, nil
}
