package usecases

import "context"

type FullSyncExecutor interface {
	Execute(ctx context.Context, cmd FullSyncCommand) (*SyncResult, error)
}

type IncrementalSyncExecutor interface {
	Execute(ctx context.Context, cmd IncrementalSyncCommand) (*SyncResult, error)
}

type RealtimeSyncExecutor interface {
	Execute(ctx context.Context, cmd RealtimeSyncCommand) (*RealtimeSyncResult, error)
}

type SetupExecutor interface {
	Execute(ctx context.Context, cmd SetupCommand) (*SetupResult, error)
}

type GetSyncStatusExecutor interface {
	Execute(ctx context.Context, query GetSyncStatusQuery) (*SyncStatusResult, error)
}

type RefreshTicketExecutor interface {
	Execute(ctx context.Context, cmd RefreshTicketCommand) (*RefreshTicketResult, error)
}

type ListTicketsExecutor interface {
	Execute(ctx context.Context, query ListTicketsQuery) (*ListTicketsResult, error)
}

type GetTicketHistoryExecutor interface {
	Execute(ctx context.Context, query GetTicketHistoryQuery) (*GetTicketHistoryResult, error)
}
