package constants

// Redis Key 前缀和格式常量
// 使用统一的命名规范: app:{module}:{entity}:{unique_id}
const (
	// AppPrefix 是所有Redis Key的统一应用前缀
	AppPrefix = "app"

	// RankModulePrefix 排序模块
	RankModulePrefix = "rank"
	// JobModulePrefix 岗位模块
	JobModulePrefix = "job"
	// FileModulePrefix 文件模块
	FileModulePrefix = "file"
	// AnalysisModulePrefix 分析模块
	AnalysisModulePrefix = "analysis"
	// TimelineModulePrefix 处理时间线模块
	TimelineModulePrefix = "timeline"

	// EntitySession 排序会话实体
	EntitySession = "session"
	// EntityLock 分布式锁实体
	EntityLock = "lock"
	// EntityText 文本实体
	EntityText = "text"
	// EntityRequirements 结构化职位要求实体
	EntityRequirements = "requirements"
	// EntityDedupSet 去重集合实体
	EntityDedupSet = "dedup_set"
	// EntityMD5ToUUID MD5到UUID的映射实体
	EntityMD5ToUUID = "md5_to_uuid"
	// EntityReport 分析报告实体
	EntityReport = "report"

	// KeyRankingSession 排序结果缓存 (STRING, JSON序列化的完整结果)
	// 格式: app:rank:session:{rankingID}
	KeyRankingSession = AppPrefix + ":" + RankModulePrefix + ":" + EntitySession + ":%s"

	// KeyRankingLeaderboard 岗位候选人榜单 (ZSET, 分数为加权总分)
	// 格式: app:rank:session:board:{jobID}
	KeyRankingLeaderboard = AppPrefix + ":" + RankModulePrefix + ":" + EntitySession + ":board:%s"

	// KeyRankingLock 排序计算分布式锁 (STRING)
	// 格式: app:rank:lock:{jobID}
	KeyRankingLock = AppPrefix + ":" + RankModulePrefix + ":" + EntityLock + ":%s"

	// KeyJobDescriptionText JD原文缓存 (STRING)
	// 格式: app:job:text:{jobID}
	KeyJobDescriptionText = AppPrefix + ":" + JobModulePrefix + ":" + EntityText + ":%s"

	// KeyJobRequirements 解析后的职位要求缓存 (STRING, JSON)
	// 格式: app:job:requirements:{jobID}
	KeyJobRequirements = AppPrefix + ":" + JobModulePrefix + ":" + EntityRequirements + ":%s"

	// KeyFileMD5Set 文件MD5集合，用于快速去重 (SET)
	// 格式: app:file:dedup_set
	KeyFileMD5Set = AppPrefix + ":" + FileModulePrefix + ":" + EntityDedupSet

	// KeyFileMD5ToSubmissionUUID MD5到SubmissionUUID的映射 (STRING)
	// 格式: app:file:md5_to_uuid:{md5}
	KeyFileMD5ToSubmissionUUID = AppPrefix + ":" + FileModulePrefix + ":" + EntityMD5ToUUID + ":%s"

	// KeyAnalysisReport 分析报告缓存 (STRING, JSON)
	// 格式: app:analysis:report:{submissionUUID}
	KeyAnalysisReport = AppPrefix + ":" + AnalysisModulePrefix + ":" + EntityReport + ":%s"

	// KeyTimelinePrefix 处理阶段时间线键前缀 (LIST, JSON事件序列)
	// 格式: app:timeline:{submissionUUID}
	KeyTimelinePrefix = AppPrefix + ":" + TimelineModulePrefix + ":"
)
