package repository

// GetEmployeeByTelegramIDSQL selects one employee by their Telegram ID.
const GetEmployeeByTelegramIDSQL = `
	SELECT id, company_id, full_name, COALESCE(position, ''), COALESCE(telegram_user_id, 0),
	       status, COALESCE(tz, ''), created_at
	FROM employee
	WHERE telegram_user_id = $1;
`

// ListActiveAssignmentsSQL selects every schedule assignment whose
// validity interval intersects [from, to], joined with the employee and
// the template rules. The effective timezone falls back to the company
// timezone when the employee has no personal override.
const ListActiveAssignmentsSQL = `
	SELECT es.employee_id, es.schedule_id, es.valid_from, es.valid_to,
	       COALESCE(e.telegram_user_id, 0), e.status, COALESCE(NULLIF(e.tz, ''), c.timezone),
	       st.rules
	FROM employee_schedule es
	JOIN employee e ON e.id = es.employee_id
	JOIN company c ON c.id = e.company_id
	JOIN schedule_template st ON st.id = es.schedule_id
	WHERE es.valid_from <= $2 AND (es.valid_to IS NULL OR es.valid_to >= $1);
`

// CreateReminderSQL inserts a reminder unless one already exists for the
// same (employee, type, planned_at). The unique index closes the
// duplicate-notification race between overlapping generator runs.
const CreateReminderSQL = `
	INSERT INTO reminder (employee_id, type, planned_at)
	VALUES ($1, $2, $3)
	ON CONFLICT (employee_id, type, planned_at) DO NOTHING;
`

// ListDueRemindersSQL selects unsent reminders planned inside the
// dispatch window for active employees.
const ListDueRemindersSQL = `
	SELECT r.id, r.employee_id, r.type, r.planned_at, COALESCE(e.telegram_user_id, 0)
	FROM reminder r
	JOIN employee e ON e.id = r.employee_id
	WHERE r.planned_at >= $1 AND r.planned_at <= $2
	  AND r.sent_at IS NULL
	  AND e.status = 'active'
	ORDER BY r.planned_at;
`

// MarkRemindersSentSQL stamps sent_at on every selected reminder in one
// bulk update, regardless of per-message delivery outcome.
const MarkRemindersSentSQL = `
	UPDATE reminder SET sent_at = $2 WHERE id = ANY($1);
`

// ListShiftsMissingReportSQL selects done shifts past the report grace
// period that have no submitted daily report.
const ListShiftsMissingReportSQL = `
	SELECT s.id, s.employee_id, s.planned_end_at
	FROM shift s
	LEFT JOIN daily_report dr ON dr.shift_id = s.id AND dr.submitted_at IS NOT NULL
	WHERE s.planned_end_at < $1
	  AND s.status = 'done'
	  AND dr.id IS NULL;
`

// CreateNoReportExceptionSQL records a missing-report anomaly once per
// (employee, date, kind).
const CreateNoReportExceptionSQL = `
	INSERT INTO exception (employee_id, date, kind, severity, details)
	VALUES ($1, $2, 'no_report', 1, $3)
	ON CONFLICT (employee_id, date, kind) DO NOTHING;
`

// CreateShiftSQL inserts a shift and returns its generated identifier.
const CreateShiftSQL = `
	INSERT INTO shift (employee_id, planned_start_at, planned_end_at, status)
	VALUES ($1, $2, $3, $4)
	RETURNING id;
`

// HasShiftBetweenSQL reports whether the employee already has a shift
// starting inside [from, to).
const HasShiftBetweenSQL = `
	SELECT EXISTS (
		SELECT 1 FROM shift
		WHERE employee_id = $1 AND planned_start_at >= $2 AND planned_start_at < $3
	);
`

// FindActiveShiftSQL selects the most recently created active shift of
// the employee.
const FindActiveShiftSQL = `
	SELECT id FROM shift
	WHERE employee_id = $1 AND status = 'active'
	ORDER BY created_at DESC
	LIMIT 1;
`

// OpenWorkIntervalSQL opens a new work interval under a shift.
const OpenWorkIntervalSQL = `
	INSERT INTO work_interval (shift_id, start_at, source)
	VALUES ($1, $2, $3);
`

// CloseWorkIntervalSQL closes the open work interval of a shift.
const CloseWorkIntervalSQL = `
	UPDATE work_interval SET end_at = $2
	WHERE shift_id = $1 AND end_at IS NULL;
`

// OpenBreakIntervalSQL opens a new break interval under a shift.
const OpenBreakIntervalSQL = `
	INSERT INTO break_interval (shift_id, start_at, type, source)
	VALUES ($1, $2, $3, $4);
`

// CloseBreakIntervalSQL closes the open break interval of a shift.
const CloseBreakIntervalSQL = `
	UPDATE break_interval SET end_at = $2
	WHERE shift_id = $1 AND end_at IS NULL AND type = $3;
`

// FinishShiftSQL marks a shift done and pins planned_end_at to the
// actual finish instant.
const FinishShiftSQL = `
	UPDATE shift SET status = 'done', planned_end_at = $2
	WHERE id = $1 AND status = 'active';
`

// SeedDailyReportSQL drafts a daily report with the planned items at
// shift start. The report stays unsubmitted until the end of day.
const SeedDailyReportSQL = `
	INSERT INTO daily_report (shift_id, planned_items, tasks_links, submitted_at)
	VALUES ($1, $2, $3, NULL)
	ON CONFLICT (shift_id) DO NOTHING;
`

// SubmitDailyReportSQL upserts the end-of-day report for a shift.
const SubmitDailyReportSQL = `
	INSERT INTO daily_report (shift_id, done_items, blockers, time_spent, attachments, submitted_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (shift_id) DO UPDATE
	SET done_items = EXCLUDED.done_items,
	    blockers = EXCLUDED.blockers,
	    time_spent = EXCLUDED.time_spent,
	    attachments = EXCLUDED.attachments,
	    submitted_at = EXCLUDED.submitted_at;
`

// ListShiftSummariesSQL aggregates worked and break minutes per shift
// for the timesheet export.
const ListShiftSummariesSQL = `
	SELECT s.id, s.planned_start_at, s.planned_end_at, s.status,
	       COALESCE((
	           SELECT SUM(EXTRACT(EPOCH FROM wi.end_at - wi.start_at))::bigint / 60
	           FROM work_interval wi
	           WHERE wi.shift_id = s.id AND wi.end_at IS NOT NULL
	       ), 0),
	       COALESCE((
	           SELECT SUM(EXTRACT(EPOCH FROM bi.end_at - bi.start_at))::bigint / 60
	           FROM break_interval bi
	           WHERE bi.shift_id = s.id AND bi.end_at IS NOT NULL
	       ), 0),
	       EXISTS (
	           SELECT 1 FROM daily_report dr
	           WHERE dr.shift_id = s.id AND dr.submitted_at IS NOT NULL
	       )
	FROM shift s
	WHERE s.employee_id = $1 AND s.planned_start_at >= $2 AND s.planned_start_at < $3
	ORDER BY s.planned_start_at;
`

// AppendAuditSQL appends one audit log entry.
const AppendAuditSQL = `
	INSERT INTO audit_log (actor, action, entity, payload)
	VALUES ($1, $2, $3, $4);
`

// CreateAbsenceSQL records an absence reported by the employee.
const CreateAbsenceSQL = `
	INSERT INTO absence (employee_id, date, reason, status)
	VALUES ($1, $2, $3, 'absent');
`

// SetPendingActionSQL upserts the single pending reply prompt of an
// employee. A newer prompt replaces the previous one.
const SetPendingActionSQL = `
	INSERT INTO pending_action (employee_id, kind, shift_id, expires_at)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (employee_id) DO UPDATE
	SET kind = EXCLUDED.kind,
	    shift_id = EXCLUDED.shift_id,
	    expires_at = EXCLUDED.expires_at,
	    created_at = now();
`

// TakePendingActionSQL consumes the pending prompt of an employee if it
// has not expired. DELETE RETURNING makes consumption one-shot.
const TakePendingActionSQL = `
	DELETE FROM pending_action
	WHERE employee_id = $1 AND expires_at > $2
	RETURNING kind, COALESCE(shift_id, ''), expires_at, created_at;
`
