package system

import (
	"fmt"
	"log"
	"os/exec"
	"strings"
	"syscall"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

func InitResourceLimits() {
	var rLimit syscall.Rlimit
	err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Не удалось получить лимит файлов: %v", err)
		return
	}

	rLimit.Cur = 2048
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}

	err = syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Не удалось установить лимит файлов: %v", err)
	} else {
		fmt.Printf("[*] Системный лимит открытых файлов увеличен до %d\n", rLimit.Cur)
	}
}

func GetBestH264Encoder() (string, string) {
	// Приоритеты:
	// 1. MacOS (VideoToolbox)
	// 2. NVIDIA (NVENC)
	// 3. Software (libx264)

	encoders := []struct {
		name string
		args string
	}{
		{"h264_videotoolbox", ""},
		{"h264_nvenc", ""},
	}

	for _, enc := range encoders {
		cmd := exec.Command("ffmpeg", "-encoders")
		out, err := cmd.CombinedOutput()
		if err == nil && strings.Contains(string(out), enc.name) {
			return enc.name, enc.args
		}
	}

	return "libx264", ""
}

// EncoderThreads возвращает число потоков для ffmpeg: половина физических
// ядер, но не меньше одного. При нехватке свободной памяти ограничиваемся
// двумя потоками, чтобы кодек не конкурировал с буфером кадров.
func EncoderThreads() int {
	threads := 1
	if count, err := cpu.Counts(false); err == nil && count > 1 {
		threads = count / 2
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		if vm.Available < 1<<30 && threads > 2 {
			threads = 2
		}
	}

	if threads < 1 {
		threads = 1
	}
	return threads
}

// EstimateFrameMemory предупреждает, когда буфер кадров рискует занять
// заметную долю доступной памяти. Генерация при этом не останавливается.
func EstimateFrameMemory(width, height, frames int) {
	need := uint64(width) * uint64(height) * 4 * uint64(frames)

	vm, err := mem.VirtualMemory()
	if err != nil {
		return
	}

	if need > vm.Available/2 {
		log.Printf("[!] Буфер кадров потребует ~%d МБ при %d МБ свободных — возможна подкачка",
			need/(1<<20), vm.Available/(1<<20))
	}
}
