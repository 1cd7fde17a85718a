package mapper

import (
	"errors"
	"math"
	"time"

	"dopamine-deck/internal/core/domain/entities"
	"dopamine-deck/internal/core/domain/exceptions"
	"dopamine-deck/internal/core/ports"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	FieldSessionID = "session_id"
	FieldTaskID    = "task_id"
	FieldDeltaX    = "delta_x"

	KindSnapshot = "snapshot"
)

// Request builds a request message from plain values.
func Request(fields map[string]any) (*structpb.Struct, error) {
	return structpb.NewStruct(fields)
}

func SessionID(req *structpb.Struct) (string, error) {
	id := stringField(req, FieldSessionID)
	if id == "" {
		return "", exceptions.ErrSessionIDRequired
	}
	return id, nil
}

func TaskID(req *structpb.Struct) (string, error) {
	id := stringField(req, FieldTaskID)
	if id == "" {
		return "", exceptions.ErrTaskIDRequired
	}
	return id, nil
}

func DeltaX(req *structpb.Struct) (float64, error) {
	v, ok := req.GetFields()[FieldDeltaX]
	if !ok {
		return 0, exceptions.ErrDeltaInvalid
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok || math.IsNaN(n.NumberValue) || math.IsInf(n.NumberValue, 0) {
		return 0, exceptions.ErrDeltaInvalid
	}
	return n.NumberValue, nil
}

func Task(task *entities.Task) *structpb.Struct {
	if task == nil {
		return nil
	}
	return object(map[string]*structpb.Value{
		"id":               structpb.NewStringValue(task.ID()),
		"title":            structpb.NewStringValue(task.Title()),
		"emoji":            structpb.NewStringValue(task.Emoji()),
		"category":         structpb.NewStringValue(task.Category()),
		"duration_seconds": number(task.DurationSeconds()),
	})
}

func SwipeState(s entities.SwipeState) *structpb.Struct {
	return object(map[string]*structpb.Value{
		"offset":    structpb.NewNumberValue(s.Offset),
		"phase":     structpb.NewStringValue(string(s.Phase)),
		"direction": structpb.NewStringValue(string(s.Direction)),
	})
}

func CardView(v entities.CardView) *structpb.Struct {
	return object(map[string]*structpb.Value{
		"task_id":  structpb.NewStringValue(v.TaskID),
		"accepted": structpb.NewBoolValue(v.Accepted),
		"state":    structpb.NewStructValue(SwipeState(v.State)),
		"transform": structpb.NewStructValue(object(map[string]*structpb.Value{
			"translate_x": structpb.NewNumberValue(v.Transform.TranslateX),
			"rotate_deg":  structpb.NewNumberValue(v.Transform.RotateDeg),
			"opacity":     structpb.NewNumberValue(v.Transform.Opacity),
		})),
	})
}

func FocusView(v entities.FocusView) *structpb.Struct {
	return object(map[string]*structpb.Value{
		"task_id":   structpb.NewStringValue(v.TaskID),
		"status":    structpb.NewStringValue(string(v.Status)),
		"remaining": number(v.Remaining),
		"total":     number(v.Total),
		"clock":     structpb.NewStringValue(v.Clock()),
	})
}

func State(s entities.ProgressionState) *structpb.Struct {
	return object(map[string]*structpb.Value{
		"xp":                    number(s.XP),
		"coins":                 number(s.Coins),
		"level":                 number(s.Level),
		"level_name":            structpb.NewStringValue(s.LevelName),
		"next_level_xp":         number(s.NextLevelXP),
		"max_level":             structpb.NewBoolValue(s.MaxLevel),
		"tasks_completed_today": number(s.TasksCompletedToday),
		"tasks_resolved_today":  number(s.TasksResolvedToday),
		"quest_tasks_completed": number(s.QuestTasksCompleted),
		"quest_achieved":        structpb.NewBoolValue(s.QuestAchieved),
		"theme_unlocked":        structpb.NewBoolValue(s.ThemeUnlocked),
		"theme":                 structpb.NewStringValue(s.Theme()),
		"total_tasks_in_deck":   number(s.TotalTasksInDeck),
	})
}

func FeedItem(item entities.FeedItem) *structpb.Struct {
	return object(map[string]*structpb.Value{
		"task_id": structpb.NewStringValue(item.TaskID),
		"title":   structpb.NewStringValue(item.Title),
		"emoji":   structpb.NewStringValue(item.Emoji),
		"at":      timestamp(item.At),
	})
}

func Notification(n entities.Notification) *structpb.Struct {
	fields := map[string]*structpb.Value{
		"kind": structpb.NewStringValue(string(n.Kind)),
		"at":   timestamp(n.At),
	}
	if n.TaskID != "" {
		fields["task_id"] = structpb.NewStringValue(n.TaskID)
	}
	if n.Title != "" {
		fields["title"] = structpb.NewStringValue(n.Title)
	}
	if n.Outcome != "" {
		fields["outcome"] = structpb.NewStringValue(string(n.Outcome))
	}
	if n.Kind == entities.NotificationLevelUp {
		fields["level"] = number(n.Level)
		fields["level_name"] = structpb.NewStringValue(n.LevelName)
		fields["milestone"] = structpb.NewBoolValue(n.Milestone)
	}
	if n.BonusXP > 0 {
		fields["bonus_xp"] = number(n.BonusXP)
	}
	return object(fields)
}

func Snapshot(snap *ports.DeckSnapshot) *structpb.Struct {
	if snap == nil {
		return nil
	}
	cards := make([]*structpb.Value, 0, len(snap.Pending))
	for _, task := range snap.Pending {
		card := Task(task)
		card.Fields["swipe"] = structpb.NewStructValue(SwipeState(snap.Cards[task.ID()]))
		card.Fields["focus"] = structpb.NewStructValue(FocusView(snap.Focus[task.ID()]))
		cards = append(cards, structpb.NewStructValue(card))
	}
	feed := make([]*structpb.Value, 0, len(snap.Feed))
	for _, item := range snap.Feed {
		feed = append(feed, structpb.NewStructValue(FeedItem(item)))
	}
	return object(map[string]*structpb.Value{
		"session_id": structpb.NewStringValue(snap.SessionID),
		"pending":    structpb.NewListValue(&structpb.ListValue{Values: cards}),
		"state":      structpb.NewStructValue(State(snap.State)),
		"feed":       structpb.NewListValue(&structpb.ListValue{Values: feed}),
	})
}

func Error(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, exceptions.ErrTaskNotFound),
		errors.Is(err, exceptions.ErrSessionNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, exceptions.ErrTaskIDRequired),
		errors.Is(err, exceptions.ErrSessionIDRequired),
		errors.Is(err, exceptions.ErrDeltaInvalid),
		errors.Is(err, exceptions.ErrEventNil),
		errors.Is(err, exceptions.ErrEventTaskIDRequired),
		errors.Is(err, exceptions.ErrOutcomeInvalid):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, exceptions.ErrLoopStopped):
		return status.Error(codes.Unavailable, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

func object(fields map[string]*structpb.Value) *structpb.Struct {
	return &structpb.Struct{Fields: fields}
}

func number(n int) *structpb.Value {
	return structpb.NewNumberValue(float64(n))
}

func stringField(req *structpb.Struct, name string) string {
	return req.GetFields()[name].GetStringValue()
}

func timestamp(t time.Time) *structpb.Value {
	if t.IsZero() {
		return structpb.NewNullValue()
	}
	return structpb.NewStringValue(t.UTC().Format(time.RFC3339Nano))
}

// SnapshotEvent is the first message of a watch stream.
func SnapshotEvent(snap *ports.DeckSnapshot) *structpb.Struct {
	out := Snapshot(snap)
	if out == nil {
		return nil
	}
	out.Fields["kind"] = structpb.NewStringValue(KindSnapshot)
	return out
}
