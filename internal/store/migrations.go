package store

const schema = `
CREATE TABLE IF NOT EXISTS feeds (
    id                 INTEGER PRIMARY KEY AUTOINCREMENT,
    name               TEXT NOT NULL,
    url                TEXT NOT NULL UNIQUE,
    category           TEXT NOT NULL DEFAULT '',
    bias               TEXT NOT NULL DEFAULT '',
    factual            TEXT NOT NULL DEFAULT '',
    author_url_pattern TEXT NOT NULL DEFAULT '',
    enabled            BOOLEAN NOT NULL DEFAULT 1,
    last_fetched       DATETIME NOT NULL DEFAULT '0001-01-01 00:00:00',
    created_at         DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS articles (
    id                INTEGER PRIMARY KEY AUTOINCREMENT,
    feed_id           INTEGER NOT NULL REFERENCES feeds(id) ON DELETE CASCADE,
    title             TEXT NOT NULL,
    link              TEXT NOT NULL UNIQUE,
    summary           TEXT NOT NULL DEFAULT '',
    author            TEXT NOT NULL DEFAULT '',
    published         DATETIME NOT NULL,
    article_score     INTEGER NOT NULL DEFAULT 0,
    publisher_score   INTEGER,
    noise_score       INTEGER NOT NULL DEFAULT 0,
    publisher_domain  TEXT NOT NULL DEFAULT '',
    mbfc_bias         TEXT NOT NULL DEFAULT '',
    mbfc_reporting    TEXT NOT NULL DEFAULT '',
    mbfc_credibility  TEXT NOT NULL DEFAULT '',
    mbfc_flags        TEXT NOT NULL DEFAULT '',
    is_read           BOOLEAN NOT NULL DEFAULT 0,
    is_hidden         BOOLEAN NOT NULL DEFAULT 0,
    is_favorite       BOOLEAN NOT NULL DEFAULT 0,
    created_at        DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_articles_feed ON articles(feed_id);
CREATE INDEX IF NOT EXISTS idx_articles_published ON articles(published);
CREATE INDEX IF NOT EXISTS idx_articles_score ON articles(noise_score);
CREATE INDEX IF NOT EXISTS idx_articles_domain ON articles(publisher_domain);
CREATE INDEX IF NOT EXISTS idx_articles_author ON articles(author);

CREATE TABLE IF NOT EXISTS filter_keywords (
    id      INTEGER PRIMARY KEY AUTOINCREMENT,
    keyword TEXT NOT NULL UNIQUE,
    weight  INTEGER NOT NULL DEFAULT 10
);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`
