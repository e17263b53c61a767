package usecase

import "context"

type StyleUC interface {
	Analyze(ctx context.Context, req *AnalyzeReq) (*AnalyzeRes, error)
}
