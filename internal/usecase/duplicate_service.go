package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/courtside/ranking/internal/domain/athlete"
	"github.com/courtside/ranking/internal/platform/logging"
)

// DuplicateService finds athlete records that likely describe the same person
// and merges them. Clustering is anchor-linked, not transitive: members join
// a cluster by similarity to its first (anchor) member only, so A-B and B-C
// similar does not pull C into A's cluster. Known limitation, kept because it
// bounds how many groups an admin reviews per pass.
type DuplicateService struct {
	athleteRepo athlete.Repository
	ranking     *RankingService
	notifier    Notifier
	logger      *logging.Logger
	now         func() time.Time
}

type ClusterMember struct {
	Athlete athlete.Athlete
	Score   int
}

type Cluster struct {
	Anchor  athlete.Athlete
	Members []ClusterMember
}

func NewDuplicateService(athleteRepo athlete.Repository, ranking *RankingService, notifier Notifier, logger *logging.Logger) *DuplicateService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &DuplicateService{
		athleteRepo: athleteRepo,
		ranking:     ranking,
		notifier:    notifier,
		logger:      logger,
		now:         time.Now,
	}
}

// DetectClusters scans the roster for likely duplicates. By default athletes
// are partitioned by gender (one person has one record gender) and the
// partitions are scanned concurrently; within a partition each not-yet-grouped
// athlete anchors a cluster and every later ungrouped athlete scoring at or
// above the similarity threshold against the anchor joins it. acrossGenders
// drops the partition and scans the whole roster as one pass, so a record
// whose gender was mis-entered still comes up for review.
func (s *DuplicateService) DetectClusters(ctx context.Context, acrossGenders bool) ([]Cluster, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DuplicateService.DetectClusters")
	defer span.End()

	athletes, err := s.athleteRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list athletes for duplicate scan: %w", err)
	}

	partitions := make([][]athlete.Athlete, 0)
	if acrossGenders {
		partitions = append(partitions, athletes)
	} else {
		byGender := make(map[athlete.Gender][]athlete.Athlete)
		for _, item := range athletes {
			byGender[item.Gender] = append(byGender[item.Gender], item)
		}
		for _, partition := range byGender {
			partitions = append(partitions, partition)
		}
	}

	runner := pool.NewWithResults[[]Cluster]().WithContext(ctx)
	for _, partition := range partitions {
		members := partition
		runner.Go(func(context.Context) ([]Cluster, error) {
			return clusterPartition(members), nil
		})
	}

	partitioned, err := runner.Wait()
	if err != nil {
		return nil, fmt.Errorf("scan duplicate partitions: %w", err)
	}

	clusters := make([]Cluster, 0)
	for _, part := range partitioned {
		clusters = append(clusters, part...)
	}
	sort.SliceStable(clusters, func(i, j int) bool {
		return clusters[i].Anchor.Name < clusters[j].Anchor.Name
	})
	return clusters, nil
}

// Merge collapses removeIDs into keepID: every result and history entry they
// own is reassigned to the keeper and their rows are deleted, in one
// transaction. The keeper's standing is recomputed afterwards. Irreversible.
func (s *DuplicateService) Merge(ctx context.Context, keepID string, removeIDs []string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.DuplicateService.Merge")
	defer span.End()

	keepID = strings.TrimSpace(keepID)
	if keepID == "" {
		return fmt.Errorf("%w: keep athlete id is required", ErrInvalidInput)
	}
	if len(removeIDs) == 0 {
		return fmt.Errorf("%w: at least one athlete to absorb is required", ErrInvalidInput)
	}

	seen := make(map[string]struct{}, len(removeIDs))
	cleaned := make([]string, 0, len(removeIDs))
	for _, raw := range removeIDs {
		removeID := strings.TrimSpace(raw)
		if removeID == "" {
			return fmt.Errorf("%w: empty athlete id in merge set", ErrInvalidInput)
		}
		if removeID == keepID {
			return fmt.Errorf("%w: cannot merge athlete %s into itself", ErrInvalidInput, keepID)
		}
		if _, dup := seen[removeID]; dup {
			continue
		}
		seen[removeID] = struct{}{}
		cleaned = append(cleaned, removeID)
	}

	if _, exists, err := s.athleteRepo.GetByID(ctx, keepID); err != nil {
		return fmt.Errorf("get keep athlete: %w", err)
	} else if !exists {
		return fmt.Errorf("%w: athlete=%s", ErrNotFound, keepID)
	}
	for _, removeID := range cleaned {
		if _, exists, err := s.athleteRepo.GetByID(ctx, removeID); err != nil {
			return fmt.Errorf("get absorbed athlete: %w", err)
		} else if !exists {
			return fmt.Errorf("%w: athlete=%s", ErrNotFound, removeID)
		}
	}

	now := s.now().UTC()
	if err := s.athleteRepo.Merge(ctx, keepID, cleaned, now); err != nil {
		return fmt.Errorf("merge athletes: %w", err)
	}
	if _, err := s.ranking.RecomputeTotal(ctx, keepID); err != nil {
		return err
	}

	if err := s.notifier.Publish(ctx, ChangeEvent{
		Type:      EventAthletesMerged,
		AthleteID: keepID,
		Detail: map[string]any{
			"absorbed": cleaned,
		},
		OccurredAt: now,
	}); err != nil {
		s.logger.WarnContext(ctx, "publish change event", "type", EventAthletesMerged, "error", err)
	}
	return nil
}

func clusterPartition(members []athlete.Athlete) []Cluster {
	grouped := make([]bool, len(members))
	clusters := make([]Cluster, 0)

	for i := range members {
		if grouped[i] {
			continue
		}

		cluster := Cluster{Anchor: members[i]}
		for j := i + 1; j < len(members); j++ {
			if grouped[j] {
				continue
			}
			score := athlete.Similarity(members[i].Name, members[j].Name)
			if score < athlete.SimilarityThreshold {
				continue
			}
			grouped[j] = true
			cluster.Members = append(cluster.Members, ClusterMember{
				Athlete: members[j],
				Score:   score,
			})
		}

		if len(cluster.Members) > 0 {
			grouped[i] = true
			clusters = append(clusters, cluster)
		}
	}

	return clusters
}
