// README: Matching counters collected over a run.
package matching

type Stats struct {
    Attempts int
    Matches  int
    Failures int
    // CommitErrors counts winning quotes the vehicle refused to adopt.
    CommitErrors int
}
