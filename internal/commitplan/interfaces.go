// Package commitplan turns scope groups into commit plans and carries them
// out against a version-control gateway.
//
// The repository stage is a single global resource. Executors serialize
// every group through unstage, stage and commit on the one Gateway they are
// handed; other processes touching the same repository at the same time are
// not guarded against and remain the caller's responsibility.
package commitplan

import "context"

// Gateway abstracts the version-control primitives the executors drive.
type Gateway interface {
	IsRepository(ctx context.Context) bool
	StagedFiles(ctx context.Context) ([]string, error)
	Stage(ctx context.Context, files []string) error
	Unstage(ctx context.Context, files []string) error
	Commit(ctx context.Context, message string) error
	UndoLastCommitKeepStaged(ctx context.Context) error
	Push(ctx context.Context) error
	CurrentBranch(ctx context.Context) (string, error)
}

// MessageGenerator turns diff text into a commit message.
type MessageGenerator interface {
	Generate(ctx context.Context, wholeDiff string) (string, error)
	GenerateScoped(ctx context.Context, scope string, files []string, diff string) (string, error)
}
