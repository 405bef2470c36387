package domain

// RunState enumerates the terminal states of one pipeline run.
type RunState string

const (
	// StateDone means the article was published and recorded.
	StateDone RunState = "done"
	// StateNoCandidate means every recent article was already published;
	// there is nothing to do today and that is not an error.
	StateNoCandidate RunState = "no_candidate"
	// StateFailed means a stage failed before a confirmed publish.
	StateFailed RunState = "failed"
)

// Stage names the pipeline step an outcome refers to.
type Stage string

const (
	StageLoad      Stage = "load"
	StageFetch     Stage = "fetch"
	StageSummarize Stage = "summarize"
	StageArtifact  Stage = "artifact"
	StagePublish   Stage = "publish"
	StageRecord    Stage = "record"
)

// Outcome is the tagged result of a pipeline run. Control flow such as
// "nothing new to publish" travels here rather than through error values.
type Outcome struct {
	State   RunState
	Stage   Stage
	Article *Article
	Result  *PublishResult
	Err     error
}

// Done reports a run that published and recorded an article.
func Done(article Article, result PublishResult) Outcome {
	return Outcome{State: StateDone, Stage: StageRecord, Article: &article, Result: &result}
}

// NoCandidate reports a run that found nothing unseen to publish.
func NoCandidate() Outcome {
	return Outcome{State: StateNoCandidate, Stage: StageFetch}
}

// Failed reports a run aborted at the given stage.
func Failed(stage Stage, article *Article, err error) Outcome {
	return Outcome{State: StateFailed, Stage: stage, Article: article, Err: err}
}
