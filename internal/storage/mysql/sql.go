package mysql

// `key` and `value` are reserved words; keep them quoted.
const createKVSQL = "CREATE TABLE IF NOT EXISTS kv_store (\n" +
	"  `key`      VARCHAR(191) NOT NULL PRIMARY KEY,\n" +
	"  `value`    LONGBLOB     NOT NULL,\n" +
	"  updated_at TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP\n" +
	") ENGINE=InnoDB DEFAULT CHARSET=utf8mb4"

const getKVSQL = "SELECT `value` FROM kv_store WHERE `key` = ?"

const upsertKVSQL = "INSERT INTO kv_store (`key`, `value`) VALUES (?, ?)\n" +
	"ON DUPLICATE KEY UPDATE `value` = VALUES(`value`), updated_at = CURRENT_TIMESTAMP"

const deleteKVSQL = "DELETE FROM kv_store WHERE `key` = ?"
