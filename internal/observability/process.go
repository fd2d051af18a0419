package observability

import (
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shirou/gopsutil/v3/process"
)

// RegisterProcessMetrics регистрирует RSS и загрузку CPU текущего процесса.
// Хранилище мира растёт в течение сессии, поэтому RSS отслеживается отдельно.
func RegisterProcessMetrics(reg prometheus.Registerer) error {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return fmt.Errorf("ошибка получения процесса: %w", err)
	}

	rss := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "process_rss_bytes",
		Help:      "Резидентная память процесса.",
	}, func() float64 {
		info, err := proc.MemoryInfo()
		if err != nil {
			return 0
		}
		return float64(info.RSS)
	})

	cpu := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "process_cpu_percent",
		Help:      "Загрузка CPU процессом в процентах.",
	}, func() float64 {
		percent, err := proc.CPUPercent()
		if err != nil {
			return 0
		}
		return percent
	})

	register(reg, rss)
	register(reg, cpu)
	return nil
}

// ProcessRSS возвращает текущий RSS процесса в байтах
func ProcessRSS() (uint64, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0, err
	}
	info, err := proc.MemoryInfo()
	if err != nil {
		return 0, err
	}
	return info.RSS, nil
}
