package pipeline

type Stage string

const (
	StageFetchHistory     Stage = "FETCH_HISTORY"
	StageProcessQuery     Stage = "PROCESS_QUERY"
	StageGenerateResponse Stage = "GENERATE_RESPONSE"
	StageCheckHITL        Stage = "CHECK_HITL"
	StageSaveInteraction  Stage = "SAVE_INTERACTION"
	StageTrimContext      Stage = "TRIM_CONTEXT"
	StageDone             Stage = "DONE"
	StageEscalated        Stage = "ESCALATED"
)

func (s Stage) Terminal() bool {
	return s == StageDone || s == StageEscalated
}

// next holds every unconditional edge. CHECK_HITL is the only branch and is resolved by the engine.
var next = map[Stage]Stage{
	StageFetchHistory:     StageProcessQuery,
	StageProcessQuery:     StageGenerateResponse,
	StageGenerateResponse: StageCheckHITL,
	StageSaveInteraction:  StageTrimContext,
	StageTrimContext:      StageDone,
}
