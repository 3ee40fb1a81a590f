package model

// WeeklyCounts holds the defect counters recorded for one project for one
// ISO week: new/fixed/dismissed totals broken down by severity (critical,
// major, minor, circular-reference, other). The field names follow the
// column names of the weekly status table and are part of the JSON contract
// consumed by the dashboard grids.
type WeeklyCounts struct {
	AllDefectCount int `json:"allDefectCount"`
	AllNew         int `json:"allNew"`
	AllFix         int `json:"allFix"`
	AllDis         int `json:"allDis"`
	CriNew         int `json:"criNew"`
	CriFix         int `json:"criFix"`
	CriDis         int `json:"criDis"`
	MajNew         int `json:"majNew"`
	MajFix         int `json:"majFix"`
	MajDis         int `json:"majDis"`
	MinNew         int `json:"minNew"`
	MinFix         int `json:"minFix"`
	MinDis         int `json:"minDis"`
	CrcNew         int `json:"crcNew"`
	CrcFix         int `json:"crcFix"`
	CrcDis         int `json:"crcDis"`
	EtcNew         int `json:"etcNew"`
	EtcFix         int `json:"etcFix"`
	EtcDis         int `json:"etcDis"`
}

// WeeklyStatusRow is one (project, week) record of the global defect report,
// joined with the project metadata.
type WeeklyStatusRow struct {
	Year        int    `json:"year"`
	Week        int    `json:"week"`
	GroupName   string `json:"groupName"`
	ProjectName string `json:"projectName"`
	Language    string `json:"language"`
	WeeklyCounts
}

// ProjectWeeklyRow is one week of a single project's defect report.
type ProjectWeeklyRow struct {
	Year           int `json:"year"`
	Week           int `json:"week"`
	UserCount      int `json:"userCount"`
	AllDefectCount int `json:"allDefectCount"`
	AllFix         int `json:"allFix"`
	AllDis         int `json:"allDis"`
}

// GroupWeeklySummary sums the weekly counters of every project in a group
// for one (year, week).
type GroupWeeklySummary struct {
	Year           int    `json:"year"`
	Week           int    `json:"week"`
	GroupName      string `json:"groupName"`
	UserCount      int    `json:"userCount"`
	ProjectCount   int    `json:"projectCount"`
	AllDefectCount int    `json:"allDefectCount"`
	AllFix         int    `json:"allFix"`
	AllDis         int    `json:"allDis"`
}

// WeeklyChangeRow sums the weekly counters across all projects for one
// (year, week), most recent week first.
type WeeklyChangeRow struct {
	Year                 int `json:"year"`
	Week                 int `json:"week"`
	DefectCountTotal     int `json:"defectCountTotal"`
	DefectCountFixed     int `json:"defectCountFixed"`
	DefectCountDismissed int `json:"defectCountDismissed"`
	UserCount            int `json:"userCount"`
}

// DefectCounts holds the present totals of a single project's defect table.
type DefectCounts struct {
	DefectCountTotal     int `json:"defectCountTotal"`
	DefectCountFixed     int `json:"defectCountFixed"`
	DefectCountDismissed int `json:"defectCountDismissed"`
}
