//go:build windows

package mediasurface

import (
	"sync"
	"syscall"
	"unsafe"

	"github.com/dixieflatline76/Spice/util/log"
)

// meErrorEvent is the IMFMediaEngine error event code (MF_MEDIA_ENGINE_EVENT_ERROR).
const meErrorEvent = 5

// notifySink implements IMFMediaEngineNotify: the engine calls EventNotify
// for every lifecycle event; this sink discards everything except the
// error event, which it logs. Its lifetime must match the engine's.
type notifySink struct {
	vtbl  *notifyVtbl
	obj   notifyObj
	mu    sync.Mutex
	freed bool
}

type notifyVtbl struct {
	queryInterface uintptr
	addRef         uintptr
	release        uintptr
	eventNotify    uintptr
}

// notifyObj is the in-memory COM object: its first field must be the
// vtable pointer, matching the layout every COM interface pointer has.
type notifyObj struct {
	lpVtbl *notifyVtbl
}

var (
	sinkVtbl     notifyVtbl
	sinkVtblOnce sync.Once
	// liveSinks keeps each notifySink reachable from Go's GC for as long as
	// the engine holds the raw COM pointer into its embedded notifyObj.
	liveSinks sync.Map // obj pointer (uintptr) -> *notifySink
)

func newNotifySink() *notifySink {
	sinkVtblOnce.Do(func() {
		sinkVtbl = notifyVtbl{
			queryInterface: syscall.NewCallback(sinkQueryInterface),
			addRef:         syscall.NewCallback(sinkAddRef),
			release:        syscall.NewCallback(sinkRelease),
			eventNotify:    syscall.NewCallback(sinkEventNotify),
		}
	})

	s := &notifySink{vtbl: &sinkVtbl}
	s.obj.lpVtbl = &sinkVtbl
	liveSinks.Store(uintptr(unsafe.Pointer(&s.obj)), s)
	return s
}

// comPtr returns the raw COM interface pointer the engine attributes bag
// should store as MF_MEDIA_ENGINE_CALLBACK.
func (s *notifySink) comPtr() uintptr {
	return uintptr(unsafe.Pointer(&s.obj))
}

func (s *notifySink) release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.freed {
		return
	}
	s.freed = true
	liveSinks.Delete(uintptr(unsafe.Pointer(&s.obj)))
}

func sinkQueryInterface(this, _, _ uintptr) uintptr {
	return 0x80004002 // E_NOINTERFACE; callers are expected to already hold the right interface
}

func sinkAddRef(this uintptr) uintptr  { return 1 }
func sinkRelease(this uintptr) uintptr { return 1 }

// sinkEventNotify implements IMFMediaEngineNotify::EventNotify(event,
// param1, param2). It ignores every event except the error code, which it
// logs; the callback contract's lifetime matches the owning engine's.
func sinkEventNotify(this, event, param1, param2 uintptr) uintptr {
	if int32(event) == meErrorEvent {
		log.Printf("mediasurface: engine reported error event (param1=%d param2=%d)", param1, param2)
	}
	return 0
}
