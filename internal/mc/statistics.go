package mc

import "math"

// Statistics 用 Welford 算法做单遍均值/方差累积，供引擎汇总路径样本。
type Statistics struct {
	n    int64
	mean float64
	m2   float64
}

func (s *Statistics) Add(x float64) {
	s.n++
	delta := x - s.mean
	s.mean += delta / float64(s.n)
	s.m2 += delta * (x - s.mean)
}

// Merge 合并另一份累积结果（并行 worker 各自累积后汇总）。
func (s *Statistics) Merge(o Statistics) {
	if o.n == 0 {
		return
	}
	if s.n == 0 {
		*s = o
		return
	}
	n1 := float64(s.n)
	n2 := float64(o.n)
	delta := o.mean - s.mean
	total := n1 + n2
	s.mean += delta * n2 / total
	s.m2 += o.m2 + delta*delta*n1*n2/total
	s.n += o.n
}

func (s *Statistics) Count() int64 { return s.n }

func (s *Statistics) Mean() float64 { return s.mean }

// Variance 返回样本方差（n-1 分母）。
func (s *Statistics) Variance() float64 {
	if s.n < 2 {
		return 0
	}
	return s.m2 / float64(s.n-1)
}

func (s *Statistics) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// ErrorEstimate 返回均值的标准误 sqrt(var/n)。
func (s *Statistics) ErrorEstimate() float64 {
	if s.n == 0 {
		return 0
	}
	return math.Sqrt(s.Variance() / float64(s.n))
}
