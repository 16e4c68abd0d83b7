package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shaiso/railbot/internal/domain"
)

// cronParser — парсер стандартных 5-польных cron-выражений.
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// CalculateNextDue вычисляет следующее время запуска расписания.
//
// Учитывает timezone расписания; результат возвращается в UTC.
// Разовое расписание возвращает StartAt, пока тот в будущем.
func CalculateNextDue(sched *domain.BookingSchedule, from time.Time) (time.Time, error) {
	loc, err := time.LoadLocation(sched.Timezone)
	if err != nil {
		loc = time.UTC
	}
	fromInTz := from.In(loc)

	if sched.IsOneShot() {
		if sched.StartAt.After(from) {
			return sched.StartAt.UTC(), nil
		}
		return time.Time{}, fmt.Errorf("one-shot schedule start time %s is in the past", sched.StartAt)
	}

	if sched.IsCron() {
		return calculateNextCron(sched.CronExpr, fromInTz)
	}

	return time.Time{}, fmt.Errorf("schedule has neither start_at nor cron_expr")
}

func calculateNextCron(cronExpr string, from time.Time) (time.Time, error) {
	schedule, err := cronParser.Parse(cronExpr)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse cron expression %q: %w", cronExpr, err)
	}
	return schedule.Next(from).UTC(), nil
}

// ValidateCronExpr проверяет валидность cron-выражения.
func ValidateCronExpr(cronExpr string) error {
	if _, err := cronParser.Parse(cronExpr); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", cronExpr, err)
	}
	return nil
}
